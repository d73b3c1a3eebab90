package opex

import "errors"

// Erros de importação surfaced ao usuário pela camada HTTP. Linhas
// malformadas individuais nunca geram erro: são descartadas em silêncio.
var (
	ErrFileTooLarge      = errors.New("arquivo excede o tamanho máximo permitido")
	ErrUnsupportedFormat = errors.New("formato de arquivo não suportado")
	ErrNoValidRecords    = errors.New("nenhum registro válido encontrado na planilha")
	ErrTooManyRecords    = errors.New("limite de registros excedido")
)
