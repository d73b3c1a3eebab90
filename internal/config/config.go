package config

import (
	"os"
	"strconv"
)

// Config reúne os parâmetros do serviço lidos do ambiente.
type Config struct {
	Port string

	// Caminho do slot durável com a coleção serializada.
	DataFile string

	// Tetos de segurança da importação.
	MaxFileMB    int
	MaxDatasetMB int
	MaxRecords   int

	// Cota do slot durável; 0 desativa.
	StorageQuotaMB int
}

// Load monta a configuração com defaults seguros.
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8084"),
		DataFile:       getEnv("OPEX_DATA_FILE", "./data/opex-data.json"),
		MaxFileMB:      getEnvInt("OPEX_MAX_FILE_MB", 50),
		MaxDatasetMB:   getEnvInt("OPEX_MAX_DATASET_MB", 50),
		MaxRecords:     getEnvInt("OPEX_MAX_RECORDS", 100000),
		StorageQuotaMB: getEnvInt("OPEX_STORAGE_QUOTA_MB", 64),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
