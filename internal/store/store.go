package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"opex-service/internal/domain"
)

// ErrDatasetTooLarge indica que a coleção serializada excede o teto do
// store; a importação é rejeitada e o conteúdo anterior fica intacto.
var ErrDatasetTooLarge = errors.New("dataset excede o tamanho máximo suportado")

// TipoFilterAll aceita qualquer tipo de despesa.
const TipoFilterAll = "all"

// RecordStore guarda a coleção importada da sessão, espelhada no slot
// durável. Um único escritor lógico (a última importação ou o clear);
// leitores operam sobre o snapshot imutável.
type RecordStore struct {
	mu       sync.RWMutex
	storage  Storage
	maxBytes int64
	logger   *zap.Logger
	records  []domain.Record
}

// NewRecordStore constrói o store e tenta recuperar uma coleção anterior
// do slot durável. Falha de desserialização resulta em coleção vazia,
// sem erro.
func NewRecordStore(storage Storage, maxBytes int64, logger *zap.Logger) *RecordStore {
	s := &RecordStore{
		storage:  storage,
		maxBytes: maxBytes,
		logger:   logger,
		records:  []domain.Record{},
	}
	s.restore()
	return s
}

func (s *RecordStore) restore() {
	data, err := s.storage.Load()
	if err != nil || len(data) == 0 {
		return
	}

	var records []domain.Record
	if err := json.Unmarshal(data, &records); err != nil {
		s.logger.Warn("cópia durável ilegível, iniciando vazio", zap.Error(err))
		return
	}

	// Reaplica os invariantes do parser: o arquivo pode ter sido editado
	// fora da aplicação.
	valid := records[:0]
	for _, r := range records {
		if r.Base != domain.BaseOrcado && r.Base != domain.BaseRealizado {
			continue
		}
		if r.Mes < 1 || r.Mes > 12 {
			continue
		}
		valid = append(valid, r)
	}
	s.records = valid
}

// SetRecords substitui a coleção inteira (nunca mescla). Rejeita datasets
// acima do teto sem tocar no conteúdo atual. Falha de cota na persistência
// é recuperada descartando a cópia durável e mantendo só memória.
func (s *RecordStore) SetRecords(records []domain.Record) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("erro ao serializar registros: %w", err)
	}
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		return fmt.Errorf("%w (%.1fMB, máx %dMB)", ErrDatasetTooLarge,
			float64(len(data))/(1024*1024), s.maxBytes/(1024*1024))
	}

	s.mu.Lock()
	s.records = records
	s.mu.Unlock()

	if err := s.storage.Save(data); err != nil {
		if errors.Is(err, ErrQuotaExceeded) {
			_ = s.storage.Remove()
			s.logger.Warn("cota do slot durável excedida, dados mantidos apenas em memória")
		} else {
			s.logger.Warn("falha ao persistir cópia durável", zap.Error(err))
		}
	}

	return nil
}

// ClearRecords esvazia a coleção e remove a cópia durável.
func (s *RecordStore) ClearRecords() error {
	s.mu.Lock()
	s.records = []domain.Record{}
	s.mu.Unlock()

	if err := s.storage.Remove(); err != nil {
		s.logger.Warn("falha ao remover cópia durável", zap.Error(err))
	}
	return nil
}

// Records devolve o snapshot completo da sessão.
func (s *RecordStore) Records() []domain.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records
}

// FilteredRecords aplica o filtro de tipo ativo: "all" devolve tudo,
// qualquer outro valor exige igualdade exata do campo tipo.
func (s *RecordStore) FilteredRecords(tipoFilter string) []domain.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if tipoFilter == "" || tipoFilter == TipoFilterAll {
		return s.records
	}
	out := []domain.Record{}
	for i := range s.records {
		if s.records[i].Tipo == tipoFilter {
			out = append(out, s.records[i])
		}
	}
	return out
}

// HasData informa se existe coleção carregada.
func (s *RecordStore) HasData() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records) > 0
}

// Count devolve o tamanho da coleção atual.
func (s *RecordStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
