// package domain/models.go
package domain

import "fmt"

// Base identifica a qual base um lançamento pertence.
type Base string

// Tags de base reconhecidas na planilha.
const (
	BaseOrcado    Base = "ORÇ26"
	BaseRealizado Base = "REAL26"
)

// PeriodoView define o modo de comparação dos agregados.
type PeriodoView string

// Modos de período suportados.
const (
	PeriodoYTD   PeriodoView = "ytd"
	PeriodoAnual PeriodoView = "anual"
)

// Semaforo é a classificação de ritmo de execução de um grupo.
type Semaforo string

// Cores possíveis do semáforo.
const (
	SemaforoGreen  Semaforo = "green"
	SemaforoYellow Semaforo = "yellow"
	SemaforoRed    Semaforo = "red"
)

// Record é uma linha normalizada da planilha OPEX.
// Imutável após o parse; todo agregado é função pura sobre um snapshot.
type Record struct {
	Base                Base    `json:"base"`
	CentroCusto         string  `json:"centroCusto"`
	DescricaoCCusto     string  `json:"descricaoCCusto"`
	AreaGrupo1          string  `json:"areaGrupo1"`
	Diretoria           string  `json:"diretoria"`
	ResponsavelArea     string  `json:"responsavelArea"`
	ContaContabil       string  `json:"contaContabil"`
	DescricaoConta      string  `json:"descricaoConta"`
	Recurso             string  `json:"recurso"`
	Pacote              string  `json:"pacote"`
	Debito              float64 `json:"debito"`
	Credito             float64 `json:"credito"`
	Executado           float64 `json:"executado"`
	Mes                 int     `json:"mes"`
	Tipo                string  `json:"tipo"` // "Opex sem Folha" | "Folha Total" | livre
	DataLcto            string  `json:"dataLcto"`
	NumeroLote          string  `json:"numeroLote"`
	Historico           string  `json:"historico"`
	NomeFornecedor      string  `json:"nomeFornecedor"`
	DescPedido          string  `json:"descPedido"`
	FornecedorGerencial string  `json:"fornecedorGerencial"`
}

// SummaryData resume orçado x realizado para o período escolhido.
type SummaryData struct {
	OrcadoYTD       float64 `json:"orcadoYTD"`
	RealizadoYTD    float64 `json:"realizadoYTD"`
	Variacao        float64 `json:"variacao"`
	VariacaoPercent float64 `json:"variacaoPercent"`
	OrcadoAnual     float64 `json:"orcadoAnual"`
	MesesComReal    []int   `json:"mesesComReal"`
	ProjecaoAnual   float64 `json:"projecaoAnual"`
}

// MonthlyData é o rollup de um mês calendário (sempre 12 por ano).
type MonthlyData struct {
	Mes             int     `json:"mes"`
	MesNome         string  `json:"mesNome"`
	Orcado          float64 `json:"orcado"`
	Realizado       float64 `json:"realizado"`
	Variacao        float64 `json:"variacao"`
	VariacaoPercent float64 `json:"variacaoPercent"`
}

// GroupedData é o agregado de um valor distinto da dimensão escolhida.
type GroupedData struct {
	Nome            string   `json:"nome"`
	Orcado          float64  `json:"orcado"`
	Realizado       float64  `json:"realizado"`
	Variacao        float64  `json:"variacao"`
	VariacaoPercent float64  `json:"variacaoPercent"`
	Semaforo        Semaforo `json:"semaforo"`
}

// MesesPT são os rótulos de mês usados nos rollups mensais e no CSV.
var MesesPT = [12]string{"Jan", "Fev", "Mar", "Abr", "Mai", "Jun", "Jul", "Ago", "Set", "Out", "Nov", "Dez"}

// Dimension identifica um atributo de agrupamento do Record.
type Dimension string

// Dimensões de agrupamento suportadas.
const (
	DimDiretoria           Dimension = "diretoria"
	DimAreaGrupo1          Dimension = "areaGrupo1"
	DimPacote              Dimension = "pacote"
	DimRecurso             Dimension = "recurso"
	DimTipo                Dimension = "tipo"
	DimCentroCusto         Dimension = "centroCusto"
	DimContaContabil       Dimension = "contaContabil"
	DimFornecedorGerencial Dimension = "fornecedorGerencial"
)

// ParseDimension valida a tag de dimensão vinda da API.
func ParseDimension(s string) (Dimension, error) {
	switch d := Dimension(s); d {
	case DimDiretoria, DimAreaGrupo1, DimPacote, DimRecurso, DimTipo,
		DimCentroCusto, DimContaContabil, DimFornecedorGerencial:
		return d, nil
	}
	return "", fmt.Errorf("dimensão de agrupamento desconhecida: %q", s)
}

// ParsePeriodo interpreta o modo de período da API; vazio assume YTD.
func ParsePeriodo(s string) (PeriodoView, error) {
	switch s {
	case "", string(PeriodoYTD):
		return PeriodoYTD, nil
	case string(PeriodoAnual):
		return PeriodoAnual, nil
	}
	return "", fmt.Errorf("período desconhecido: %q", s)
}
