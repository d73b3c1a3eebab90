// cmd/opex/main.go
package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"opex-service/internal/api/handlers"
	"opex-service/internal/api/responses"
	"opex-service/internal/config"
	"opex-service/internal/core/opex"
	"opex-service/internal/store"
)

func main() {
	_ = godotenv.Load()

	responses.InitLogger()
	cfg := config.Load()

	storage, err := store.NewFileStorage(cfg.DataFile, int64(cfg.StorageQuotaMB)*1024*1024)
	if err != nil {
		log.Fatal("Falha ao preparar o armazenamento durável: ", err)
	}

	recordStore := store.NewRecordStore(storage, int64(cfg.MaxDatasetMB)*1024*1024, responses.Logger())
	parser := opex.NewParser(int64(cfg.MaxFileMB)*1024*1024, cfg.MaxRecords)
	opexHandler := handlers.NewOPEXHandler(parser, recordStore)

	router := gin.Default()

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/opex/upload", opexHandler.HandleUpload)
		apiV1.GET("/opex/summary", opexHandler.HandleSummary)
		apiV1.GET("/opex/monthly", opexHandler.HandleMonthly)
		apiV1.GET("/opex/groups", opexHandler.HandleGroups)
		apiV1.GET("/opex/records", opexHandler.HandleRecords)
		apiV1.GET("/opex/search", opexHandler.HandleSearch)
		apiV1.DELETE("/opex/records", opexHandler.HandleClear)
		apiV1.GET("/opex/export/groups.csv", opexHandler.HandleExportGroups)
		apiV1.GET("/opex/export/monthly.csv", opexHandler.HandleExportMonthly)
		apiV1.GET("/opex/export/records.csv", opexHandler.HandleExportRecords)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP", "service": "opex-service"})
	})

	log.Printf("🚀 OPEX Service (Go) iniciado e escutando na porta %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Falha ao iniciar o servidor OPEX: ", err)
	}
}
