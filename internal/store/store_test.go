package store

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"opex-service/internal/domain"
)

// memStorage é um slot durável em memória com injeção de falhas.
type memStorage struct {
	data    []byte
	saveErr error
	removed bool
}

func (m *memStorage) Load() ([]byte, error) { return m.data, nil }

func (m *memStorage) Save(data []byte) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.data = data
	return nil
}

func (m *memStorage) Remove() error {
	m.data = nil
	m.removed = true
	return nil
}

func sampleRecords() []domain.Record {
	return []domain.Record{
		{Base: domain.BaseOrcado, Mes: 1, Executado: 100, Tipo: "Opex sem Folha"},
		{Base: domain.BaseRealizado, Mes: 1, Executado: 95, Tipo: "Folha Total"},
	}
}

func TestSetRecordsPersists(t *testing.T) {
	ms := &memStorage{}
	s := NewRecordStore(ms, 1024*1024, zap.NewNop())

	if err := s.SetRecords(sampleRecords()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Count() != 2 {
		t.Fatalf("expected 2 records, got %d", s.Count())
	}

	var persisted []domain.Record
	if err := json.Unmarshal(ms.data, &persisted); err != nil {
		t.Fatalf("durable copy unreadable: %v", err)
	}
	if len(persisted) != 2 {
		t.Fatalf("expected 2 persisted records, got %d", len(persisted))
	}
}

func TestSetRecordsRejectsOversizedDataset(t *testing.T) {
	ms := &memStorage{}
	s := NewRecordStore(ms, 64, zap.NewNop()) // teto minúsculo

	if err := s.SetRecords(sampleRecords()); err == nil {
		t.Fatalf("expected error, got nil")
	} else if !errors.Is(err, ErrDatasetTooLarge) {
		t.Fatalf("expected ErrDatasetTooLarge, got %v", err)
	}

	// Rejeição não pode tocar no conteúdo anterior.
	if s.Count() != 0 {
		t.Fatalf("store mutated on rejected import: %d records", s.Count())
	}
	if ms.data != nil {
		t.Fatalf("durable copy written on rejected import")
	}
}

func TestSetRecordsKeepsPriorDataOnRejection(t *testing.T) {
	ms := &memStorage{}
	s := NewRecordStore(ms, 1024*1024, zap.NewNop())
	if err := s.SetRecords(sampleRecords()); err != nil {
		t.Fatalf("seed: %v", err)
	}

	s.maxBytes = 8 // força rejeição da próxima importação
	big := append(sampleRecords(), sampleRecords()...)
	if err := s.SetRecords(big); !errors.Is(err, ErrDatasetTooLarge) {
		t.Fatalf("expected ErrDatasetTooLarge, got %v", err)
	}
	if s.Count() != 2 {
		t.Fatalf("prior collection lost: %d records", s.Count())
	}
}

func TestQuotaFailureDegradesToMemoryOnly(t *testing.T) {
	ms := &memStorage{saveErr: ErrQuotaExceeded}
	s := NewRecordStore(ms, 1024*1024, zap.NewNop())

	// Cota estourada não é erro para o chamador.
	if err := s.SetRecords(sampleRecords()); err != nil {
		t.Fatalf("expected soft degrade, got %v", err)
	}
	if s.Count() != 2 {
		t.Fatalf("expected records kept in memory, got %d", s.Count())
	}
	if !ms.removed {
		t.Fatalf("expected durable copy to be dropped on quota failure")
	}
}

func TestClearRecords(t *testing.T) {
	ms := &memStorage{}
	s := NewRecordStore(ms, 1024*1024, zap.NewNop())
	if err := s.SetRecords(sampleRecords()); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := s.ClearRecords(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.HasData() {
		t.Fatalf("expected empty store after clear")
	}
	if ms.data != nil {
		t.Fatalf("expected durable copy removed")
	}
}

func TestRestoreFromDurableCopy(t *testing.T) {
	data, _ := json.Marshal(sampleRecords())
	ms := &memStorage{data: data}

	s := NewRecordStore(ms, 1024*1024, zap.NewNop())
	if s.Count() != 2 {
		t.Fatalf("expected restored collection, got %d records", s.Count())
	}
}

func TestRestoreIgnoresCorruptedCopy(t *testing.T) {
	ms := &memStorage{data: []byte("{notjson")}

	s := NewRecordStore(ms, 1024*1024, zap.NewNop())
	if s.Count() != 0 {
		t.Fatalf("expected empty collection for corrupted copy, got %d", s.Count())
	}
}

func TestRestoreDropsInvalidRecords(t *testing.T) {
	records := append(sampleRecords(),
		domain.Record{Base: "QUALQUER", Mes: 1},
		domain.Record{Base: domain.BaseOrcado, Mes: 13},
	)
	data, _ := json.Marshal(records)
	ms := &memStorage{data: data}

	s := NewRecordStore(ms, 1024*1024, zap.NewNop())
	if s.Count() != 2 {
		t.Fatalf("expected invariant-violating records dropped, got %d", s.Count())
	}
}

func TestFilteredRecords(t *testing.T) {
	ms := &memStorage{}
	s := NewRecordStore(ms, 1024*1024, zap.NewNop())
	if err := s.SetRecords(sampleRecords()); err != nil {
		t.Fatalf("seed: %v", err)
	}

	cases := []struct {
		filter string
		want   int
	}{
		{"all", 2},
		{"", 2},
		{"Opex sem Folha", 1},
		{"Folha Total", 1},
		{"Opex sem", 0}, // igualdade exata, não prefixo
	}
	for i, tc := range cases {
		if got := len(s.FilteredRecords(tc.filter)); got != tc.want {
			t.Fatalf("case %d filter %q: got %d, want %d", i, tc.filter, got, tc.want)
		}
	}
}

func TestFileStorageRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "opex-data.json")
	fs, err := NewFileStorage(path, 1024)
	if err != nil {
		t.Fatalf("new storage: %v", err)
	}

	if data, err := fs.Load(); err != nil || data != nil {
		t.Fatalf("expected empty slot, got %v / %v", data, err)
	}

	if err := fs.Save([]byte(`[{"a":1}]`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	data, err := fs.Load()
	if err != nil || string(data) != `[{"a":1}]` {
		t.Fatalf("load after save: %q / %v", data, err)
	}

	if err := fs.Remove(); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := fs.Remove(); err != nil {
		t.Fatalf("remove must be idempotent: %v", err)
	}
}

func TestFileStorageQuota(t *testing.T) {
	path := filepath.Join(t.TempDir(), "opex-data.json")
	fs, err := NewFileStorage(path, 4)
	if err != nil {
		t.Fatalf("new storage: %v", err)
	}

	if err := fs.Save([]byte("12345")); !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}
}
