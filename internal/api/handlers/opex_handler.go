package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"opex-service/internal/api/responses"
	"opex-service/internal/core/opex"
	"opex-service/internal/domain"
	"opex-service/internal/store"
)

const searchResultLimit = 50
const suggestLimit = 5

// OPEXHandler lida com as requisições da API do dashboard OPEX.
type OPEXHandler struct {
	parser *opex.Parser
	store  *store.RecordStore
}

// NewOPEXHandler cria um novo handler do dashboard.
func NewOPEXHandler(parser *opex.Parser, recordStore *store.RecordStore) *OPEXHandler {
	return &OPEXHandler{
		parser: parser,
		store:  recordStore,
	}
}

// HandleUpload recebe a planilha, valida, faz o parse e substitui a
// coleção da sessão. Falha de parse ou de store deixa a coleção anterior
// intacta (substitui-ou-rejeita, nunca resultado parcial).
func (h *OPEXHandler) HandleUpload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		responses.Error(c, http.StatusBadRequest, "Arquivo da planilha (.xls, .xlsx) não encontrado ou inválido")
		return
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if ext != ".xls" && ext != ".xlsx" {
		responses.Error(c, http.StatusBadRequest, fmt.Sprintf("Extensão de arquivo não suportada: %s. Envie .xlsx ou .xls", ext))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		responses.Error(c, http.StatusInternalServerError, "Não foi possível abrir o arquivo enviado")
		return
	}
	defer file.Close()

	records, skipped, err := h.parser.Parse(file, fileHeader.Size)
	if err != nil {
		switch {
		case errors.Is(err, opex.ErrFileTooLarge):
			responses.Error(c, http.StatusRequestEntityTooLarge, "Arquivo muito grande", err.Error())
		case errors.Is(err, opex.ErrTooManyRecords):
			responses.Error(c, http.StatusBadRequest, "Planilha com registros demais, importação abortada", err.Error())
		case errors.Is(err, opex.ErrNoValidRecords):
			responses.Error(c, http.StatusBadRequest, "Nenhum registro válido encontrado. Verifique se a aba e a estrutura estão corretas", err.Error())
		default:
			responses.Error(c, http.StatusBadRequest, "Erro ao processar a planilha", err.Error())
		}
		return
	}

	if err := h.store.SetRecords(records); err != nil {
		if errors.Is(err, store.ErrDatasetTooLarge) {
			responses.Error(c, http.StatusRequestEntityTooLarge, "Dataset muito grande", err.Error())
			return
		}
		responses.Error(c, http.StatusInternalServerError, "Erro ao armazenar os registros", err.Error())
		return
	}

	meses := opex.MesesComReal(records)
	responses.Logger().Info("planilha importada",
		zap.String("arquivo", fileHeader.Filename),
		zap.Int("registros", len(records)),
		zap.Int("linhasIgnoradas", skipped),
		zap.Ints("mesesComReal", meses),
	)

	responses.Success(c, gin.H{
		"registros":       len(records),
		"linhasIgnoradas": skipped,
		"mesesComReal":    meses,
	}, "Planilha importada com sucesso")
}

// HandleSummary devolve os totais de topo para o período pedido.
func (h *OPEXHandler) HandleSummary(c *gin.Context) {
	periodo, err := domain.ParsePeriodo(c.Query("period"))
	if err != nil {
		responses.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	records := h.store.FilteredRecords(c.DefaultQuery("tipo", store.TipoFilterAll))
	responses.Success(c, opex.GetSummary(records, periodo), "Resumo calculado")
}

// HandleMonthly devolve o rollup mensal (sempre 12 entradas).
func (h *OPEXHandler) HandleMonthly(c *gin.Context) {
	records := h.store.FilteredRecords(c.DefaultQuery("tipo", store.TipoFilterAll))
	responses.Success(c, opex.GetMonthlyData(records), "Dados mensais calculados")
}

// HandleGroups agrega por dimensão, com drill-down opcional por uma
// segunda dimensão fixada em um valor.
func (h *OPEXHandler) HandleGroups(c *gin.Context) {
	dim, err := domain.ParseDimension(c.Query("dimension"))
	if err != nil {
		responses.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	periodo, err := domain.ParsePeriodo(c.Query("period"))
	if err != nil {
		responses.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	records := h.store.FilteredRecords(c.DefaultQuery("tipo", store.TipoFilterAll))

	// mesesComReal vem da coleção filtrada por tipo, antes do drill-down:
	// o recorte é comparado contra o ritmo geral, não contra o próprio.
	meses := opex.MesesComReal(records)

	if filterDim := c.Query("filterDimension"); filterDim != "" {
		fd, err := domain.ParseDimension(filterDim)
		if err != nil {
			responses.Error(c, http.StatusBadRequest, err.Error())
			return
		}
		records = opex.FilterByDimension(records, fd, c.Query("filterValue"))
	}

	groups := opex.GroupBy(records, dim, meses, periodo)
	if c.Query("omitEmpty") == "true" {
		groups = opex.OmitEmptyGroups(groups)
	}
	responses.Success(c, groups, "Agrupamento calculado")
}

// HandleRecords devolve o snapshot filtrado.
func (h *OPEXHandler) HandleRecords(c *gin.Context) {
	records := h.store.FilteredRecords(c.DefaultQuery("tipo", store.TipoFilterAll))
	responses.Success(c, gin.H{"total": len(records), "registros": records}, "Registros carregados")
}

// HandleSearch busca registros por substring; sem resultado, devolve
// sugestões de valores de dimensão próximos do termo.
func (h *OPEXHandler) HandleSearch(c *gin.Context) {
	query := c.Query("q")
	if strings.TrimSpace(query) == "" {
		responses.Error(c, http.StatusBadRequest, "Informe o termo de busca no parâmetro q")
		return
	}

	records := h.store.FilteredRecords(c.DefaultQuery("tipo", store.TipoFilterAll))
	results := opex.SearchRecords(records, query, searchResultLimit)

	var sugestoes []string
	if len(results) == 0 {
		sugestoes = opex.Suggest(records, query, suggestLimit)
	}

	responses.Success(c, gin.H{
		"total":     len(results),
		"registros": results,
		"sugestoes": sugestoes,
	}, "Busca concluída")
}

// HandleClear descarta a coleção da sessão e a cópia durável.
func (h *OPEXHandler) HandleClear(c *gin.Context) {
	if err := h.store.ClearRecords(); err != nil {
		responses.Error(c, http.StatusInternalServerError, "Erro ao limpar os dados", err.Error())
		return
	}
	responses.Success(c, nil, "Dados removidos")
}

// HandleExportGroups baixa o agrupamento atual em CSV.
func (h *OPEXHandler) HandleExportGroups(c *gin.Context) {
	dim, err := domain.ParseDimension(c.Query("dimension"))
	if err != nil {
		responses.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	periodo, err := domain.ParsePeriodo(c.Query("period"))
	if err != nil {
		responses.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	records := h.store.FilteredRecords(c.DefaultQuery("tipo", store.TipoFilterAll))
	groups := opex.GroupBy(records, dim, opex.MesesComReal(records), periodo)
	if c.Query("omitEmpty") == "true" {
		groups = opex.OmitEmptyGroups(groups)
	}

	data, err := opex.GroupedCSV(groups, periodo)
	if err != nil {
		responses.Error(c, http.StatusInternalServerError, "Erro ao gerar CSV", err.Error())
		return
	}
	sendCSV(c, fmt.Sprintf("opex_%s", dim), data)
}

// HandleExportMonthly baixa o rollup mensal em CSV.
func (h *OPEXHandler) HandleExportMonthly(c *gin.Context) {
	records := h.store.FilteredRecords(c.DefaultQuery("tipo", store.TipoFilterAll))
	data, err := opex.MonthlyCSV(opex.GetMonthlyData(records))
	if err != nil {
		responses.Error(c, http.StatusInternalServerError, "Erro ao gerar CSV", err.Error())
		return
	}
	sendCSV(c, "opex_mensal", data)
}

// HandleExportRecords baixa os registros filtrados em CSV.
func (h *OPEXHandler) HandleExportRecords(c *gin.Context) {
	records := h.store.FilteredRecords(c.DefaultQuery("tipo", store.TipoFilterAll))
	data, err := opex.RecordsCSV(records)
	if err != nil {
		responses.Error(c, http.StatusInternalServerError, "Erro ao gerar CSV", err.Error())
		return
	}
	sendCSV(c, "opex_registros", data)
}

func sendCSV(c *gin.Context, prefix string, data []byte) {
	fileName := fmt.Sprintf("%s_%s.csv", prefix, time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", "attachment; filename="+fileName)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}
