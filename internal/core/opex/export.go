package opex

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"opex-service/internal/core/sanitize"
	"opex-service/internal/domain"
)

// Exportação CSV derivada: delimitador ';', UTF-8 com BOM, valores
// monetários com 2 casas e percentuais com 1, na ordem de exibição atual.

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func formatCurrency(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func writeCSV(header []string, rows [][]string) ([]byte, error) {
	var buffer bytes.Buffer
	buffer.Write(utf8BOM)

	writer := csv.NewWriter(&buffer)
	writer.Comma = ';'

	for i := range header {
		header[i] = sanitize.ForCSV(header[i])
	}
	if err := writer.Write(header); err != nil {
		return nil, err
	}

	for _, row := range rows {
		for i := range row {
			row[i] = sanitize.ForCSV(row[i])
		}
		if err := writer.Write(row); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	return buffer.Bytes(), writer.Error()
}

// GroupedCSV exporta a visão agrupada já ordenada.
func GroupedCSV(groups []domain.GroupedData, periodo domain.PeriodoView) ([]byte, error) {
	orcLabel := "Orçado YTD"
	realLabel := "Realizado YTD"
	if periodo == domain.PeriodoAnual {
		orcLabel = "Orçado Anual"
		realLabel = "Realizado Acum."
	}

	header := []string{"Nome", orcLabel, realLabel, "Variação", "Variação %", "Semáforo"}
	rows := make([][]string, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, []string{
			g.Nome,
			formatCurrency(g.Orcado),
			formatCurrency(g.Realizado),
			formatCurrency(g.Variacao),
			formatPercent(g.VariacaoPercent),
			string(g.Semaforo),
		})
	}
	return writeCSV(header, rows)
}

// MonthlyCSV exporta o rollup mensal (12 linhas).
func MonthlyCSV(monthly []domain.MonthlyData) ([]byte, error) {
	header := []string{"Mês", "Orçado", "Realizado", "Variação", "Variação %"}
	rows := make([][]string, 0, len(monthly))
	for _, m := range monthly {
		rows = append(rows, []string{
			m.MesNome,
			formatCurrency(m.Orcado),
			formatCurrency(m.Realizado),
			formatCurrency(m.Variacao),
			formatPercent(m.VariacaoPercent),
		})
	}
	return writeCSV(header, rows)
}

// RecordsCSV exporta os registros filtrados linha a linha.
func RecordsCSV(records []domain.Record) ([]byte, error) {
	header := []string{
		"Base", "Centro de Custo", "Descrição C.Custo", "Área Grupo", "Diretoria",
		"Responsável Área", "Conta Contábil", "Descrição Conta", "Recurso", "Pacote",
		"Débito", "Crédito", "Executado", "Mês", "Tipo", "Data Lcto", "Número Lote",
		"Histórico", "Fornecedor", "Desc. Pedido", "Fornecedor Gerencial",
	}
	rows := make([][]string, 0, len(records))
	for i := range records {
		r := &records[i]
		rows = append(rows, []string{
			string(r.Base),
			r.CentroCusto,
			r.DescricaoCCusto,
			r.AreaGrupo1,
			r.Diretoria,
			r.ResponsavelArea,
			r.ContaContabil,
			r.DescricaoConta,
			r.Recurso,
			r.Pacote,
			formatCurrency(r.Debito),
			formatCurrency(r.Credito),
			formatCurrency(r.Executado),
			fmt.Sprintf("%d", r.Mes),
			r.Tipo,
			r.DataLcto,
			r.NumeroLote,
			r.Historico,
			r.NomeFornecedor,
			r.DescPedido,
			r.FornecedorGerencial,
		})
	}
	return writeCSV(header, rows)
}
