package opex

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/shakinm/xlsReader/xls"
	"github.com/xuri/excelize/v2"

	"opex-service/internal/core/sanitize"
	"opex-service/internal/domain"
)

// Offsets fixos de coluna do layout esperado da planilha (0-indexado).
// Este mapeamento é contrato com o arquivo de origem: mudanças na planilha
// quebram a importação, nunca este código.
const (
	colBase                = 0
	colCentroCusto         = 1
	colDescricaoCCusto     = 2
	colAreaGrupo1          = 5
	colDiretoria           = 6
	colResponsavelArea     = 7
	colContaContabil       = 8
	colDescricaoConta      = 9
	colRecurso             = 11
	colPacote              = 12
	colDebito              = 13
	colCredito             = 14
	colExecutado           = 15
	colMes                 = 16
	colDataLcto            = 17
	colNumeroLote          = 18
	colHistorico           = 20
	colNomeFornecedor      = 24
	colDescPedido          = 28
	colFornecedorGerencial = 30
	colTipo                = 34
)

// minRowCells é o mínimo de células para uma linha de dados ser considerada.
const minRowCells = 17

// headerScanRows limita a varredura heurística pela linha de cabeçalho.
const headerScanRows = 10

// defaultHeaderIdx é a posição assumida do cabeçalho quando o marcador
// "BASE" não aparece na janela de varredura (4ª linha da planilha).
const defaultHeaderIdx = 3

// Parser transforma os bytes de uma planilha OPEX em registros normalizados.
type Parser struct {
	maxFileBytes int64
	maxRecords   int
}

// NewParser cria um parser com os tetos de segurança configurados.
func NewParser(maxFileBytes int64, maxRecords int) *Parser {
	return &Parser{maxFileBytes: maxFileBytes, maxRecords: maxRecords}
}

// Parse lê a planilha inteira e devolve os registros válidos na ordem
// original, mais a contagem de linhas de dados descartadas (diagnóstico).
//
// A validação é em duas fases: rejeição barata por tamanho antes de
// decodificar, e tolerância por linha durante a varredura — linhas
// malformadas são puladas em silêncio; a importação só falha por inteiro
// quando nada sobra ou quando o teto de registros estoura.
func (p *Parser) Parse(file io.Reader, size int64) ([]domain.Record, int, error) {
	if size > p.maxFileBytes {
		return nil, 0, fmt.Errorf("%w (máx %dMB)", ErrFileTooLarge, p.maxFileBytes/(1024*1024))
	}

	rows, err := p.loadWorkbook(file)
	if err != nil {
		return nil, 0, err
	}

	headerIdx := findHeaderRow(rows)

	var records []domain.Record
	skipped := 0

	for i := headerIdx + 1; i < len(rows); i++ {
		row := rows[i]
		if len(row) < minRowCells {
			skipped++
			continue
		}

		base := domain.Base(strings.ToUpper(strings.TrimSpace(row[colBase])))
		if base != domain.BaseOrcado && base != domain.BaseRealizado {
			skipped++
			continue
		}

		mes := int(sanitize.ParseAmount(cell(row, colMes)))
		if mes < 1 || mes > 12 {
			skipped++
			continue
		}

		records = append(records, domain.Record{
			Base:                base,
			CentroCusto:         sanitize.Text(cell(row, colCentroCusto)),
			DescricaoCCusto:     sanitize.Text(cell(row, colDescricaoCCusto)),
			AreaGrupo1:          sanitize.Text(cell(row, colAreaGrupo1)),
			Diretoria:           sanitize.Text(cell(row, colDiretoria)),
			ResponsavelArea:     sanitize.Text(cell(row, colResponsavelArea)),
			ContaContabil:       sanitize.Text(cell(row, colContaContabil)),
			DescricaoConta:      sanitize.Text(cell(row, colDescricaoConta)),
			Recurso:             sanitize.Text(cell(row, colRecurso)),
			Pacote:              sanitize.Text(cell(row, colPacote)),
			Debito:              sanitize.ParseAmount(cell(row, colDebito)),
			Credito:             sanitize.ParseAmount(cell(row, colCredito)),
			Executado:           sanitize.ParseAmount(cell(row, colExecutado)),
			Mes:                 mes,
			Tipo:                sanitize.Text(cell(row, colTipo)),
			DataLcto:            sanitize.Text(cell(row, colDataLcto)),
			NumeroLote:          sanitize.Text(cell(row, colNumeroLote)),
			Historico:           sanitize.Text(cell(row, colHistorico)),
			NomeFornecedor:      sanitize.Text(cell(row, colNomeFornecedor)),
			DescPedido:          sanitize.Text(cell(row, colDescPedido)),
			FornecedorGerencial: sanitize.Text(cell(row, colFornecedorGerencial)),
		})

		if len(records) > p.maxRecords {
			return nil, 0, fmt.Errorf("%w (máx %d)", ErrTooManyRecords, p.maxRecords)
		}
	}

	if len(records) == 0 {
		return nil, 0, ErrNoValidRecords
	}

	return records, skipped, nil
}

// loadWorkbook materializa a aba relevante como matriz de strings.
// Tenta .xlsx primeiro; cai para o leitor de .xls legado.
func (p *Parser) loadWorkbook(file io.Reader) ([][]string, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("erro ao ler o arquivo: %w", err)
	}

	if f, err := excelize.OpenReader(bytes.NewReader(data)); err == nil {
		defer f.Close()
		return f.GetRows(pickSheetName(f.GetSheetList()))
	}

	workbook, err := xls.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, ErrUnsupportedFormat
	}

	sheets := workbook.GetSheets()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("o arquivo .xls não contém planilhas")
	}

	var names []string
	for i := range sheets {
		names = append(names, sheets[i].GetName())
	}
	target := pickSheetName(names)

	var rows [][]string
	for i := range sheets {
		if sheets[i].GetName() != target {
			continue
		}
		for _, row := range sheets[i].GetRows() {
			var cells []string
			for _, c := range row.GetCols() {
				cells = append(cells, c.GetString())
			}
			rows = append(rows, cells)
		}
		break
	}
	return rows, nil
}

// pickSheetName seleciona a aba pelo marcador no nome ("Base Real" ou
// "Orçado", sensível a caixa); sem marcador, fica a primeira.
func pickSheetName(names []string) string {
	if len(names) == 0 {
		return ""
	}
	for _, n := range names {
		if strings.Contains(n, "Base Real") || strings.Contains(n, "Orçado") {
			return n
		}
	}
	return names[0]
}

// findHeaderRow varre as primeiras linhas atrás de uma célula contendo
// "BASE" (coluna indicadora de base). A heurística trava na primeira
// ocorrência: um marcador solto antes do cabeçalho real vence a varredura.
func findHeaderRow(rows [][]string) int {
	limit := headerScanRows
	if len(rows) < limit {
		limit = len(rows)
	}
	for i := 0; i < limit; i++ {
		for _, c := range rows[i] {
			if strings.Contains(strings.ToUpper(c), "BASE") {
				return i
			}
		}
	}
	return defaultHeaderIdx
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
