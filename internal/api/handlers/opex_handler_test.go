package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"opex-service/internal/api/responses"
	"opex-service/internal/core/opex"
	"opex-service/internal/domain"
	"opex-service/internal/store"
)

func newTestRouter(t *testing.T) (*gin.Engine, *store.RecordStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	responses.InitLogger()

	storage, err := store.NewFileStorage(filepath.Join(t.TempDir(), "opex-data.json"), 1024*1024)
	if err != nil {
		t.Fatalf("storage: %v", err)
	}
	recordStore := store.NewRecordStore(storage, 1024*1024, zap.NewNop())
	parser := opex.NewParser(50*1024*1024, 100000)
	h := NewOPEXHandler(parser, recordStore)

	router := gin.New()
	router.POST("/api/v1/opex/upload", h.HandleUpload)
	router.GET("/api/v1/opex/summary", h.HandleSummary)
	router.GET("/api/v1/opex/groups", h.HandleGroups)
	router.DELETE("/api/v1/opex/records", h.HandleClear)
	return router, recordStore
}

func workbookBytes(t *testing.T) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", "Base Real & Orçado"); err != nil {
		t.Fatalf("rename sheet: %v", err)
	}

	header := make([]interface{}, 35)
	for i := range header {
		header[i] = ""
	}
	header[0] = "BASE"

	orc := make([]interface{}, 35)
	real := make([]interface{}, 35)
	for i := range orc {
		orc[i] = ""
		real[i] = ""
	}
	orc[0], orc[6], orc[15], orc[16], orc[34] = "ORÇ26", "OPERAÇÕES", 100.0, 1, "Opex sem Folha"
	real[0], real[6], real[15], real[16], real[34] = "REAL26", "OPERAÇÕES", 95.0, 1, "Opex sem Folha"

	for i, row := range [][]interface{}{header, orc, real} {
		cellRef, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Base Real & Orçado", cellRef, &row); err != nil {
			t.Fatalf("write row: %v", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

func uploadRequest(t *testing.T, filename string, content []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatalf("write form: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/opex/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadAndSummaryFlow(t *testing.T) {
	router, recordStore := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "opex.xlsx", workbookBytes(t)))
	if w.Code != http.StatusOK {
		t.Fatalf("upload failed: %d %s", w.Code, w.Body.String())
	}
	if recordStore.Count() != 2 {
		t.Fatalf("expected 2 records in store, got %d", recordStore.Count())
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/opex/summary?period=ytd", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("summary failed: %d %s", w.Code, w.Body.String())
	}

	var resp struct {
		Status string             `json:"status"`
		Data   domain.SummaryData `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if resp.Status != "success" {
		t.Fatalf("unexpected status: %q", resp.Status)
	}
	if resp.Data.OrcadoYTD != 100 || resp.Data.RealizadoYTD != 95 || resp.Data.Variacao != -5 {
		t.Fatalf("unexpected summary: %+v", resp.Data)
	}
}

func TestUploadRejectsUnknownExtension(t *testing.T) {
	router, recordStore := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "dados.txt", []byte("não é planilha")))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if recordStore.HasData() {
		t.Fatalf("store must stay empty on rejected upload")
	}
}

func TestGroupsEndpointValidatesDimension(t *testing.T) {
	router, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/opex/groups?dimension=invalida", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown dimension, got %d", w.Code)
	}
}

func TestClearEndpoint(t *testing.T) {
	router, recordStore := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "opex.xlsx", workbookBytes(t)))
	if w.Code != http.StatusOK {
		t.Fatalf("upload failed: %d", w.Code)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/opex/records", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("clear failed: %d", w.Code)
	}
	if recordStore.HasData() {
		t.Fatalf("expected empty store after clear")
	}
}
