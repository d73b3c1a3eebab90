package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrQuotaExceeded indica que a cópia durável não coube no espaço
// reservado. O RecordStore degrada para operação só em memória.
var ErrQuotaExceeded = errors.New("cota de armazenamento durável excedida")

// Storage é o slot durável único que guarda a coleção serializada.
type Storage interface {
	Load() ([]byte, error)
	Save(data []byte) error
	Remove() error
}

// FileStorage persiste o slot num arquivo JSON com teto de bytes.
type FileStorage struct {
	path     string
	maxBytes int64
}

// NewFileStorage cria o diretório do arquivo se preciso. maxBytes <= 0
// desativa o teto.
func NewFileStorage(path string, maxBytes int64) (*FileStorage, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("erro ao criar diretório de dados: %w", err)
	}
	return &FileStorage{path: path, maxBytes: maxBytes}, nil
}

func (f *FileStorage) Load() ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (f *FileStorage) Save(data []byte) error {
	if f.maxBytes > 0 && int64(len(data)) > f.maxBytes {
		return ErrQuotaExceeded
	}
	return os.WriteFile(f.path, data, 0o644)
}

func (f *FileStorage) Remove() error {
	err := os.Remove(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
