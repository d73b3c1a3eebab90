package opex

import (
	"sort"

	"opex-service/internal/domain"
)

// Funções de agregação: todas puras sobre um snapshot de registros.
// Nenhuma muta a coleção de entrada; cada chamada aloca o resultado.

// dimensionAccessors despacha a tag de dimensão para o campo tipado
// correspondente, sem reflexão.
var dimensionAccessors = map[domain.Dimension]func(*domain.Record) string{
	domain.DimDiretoria:           func(r *domain.Record) string { return r.Diretoria },
	domain.DimAreaGrupo1:          func(r *domain.Record) string { return r.AreaGrupo1 },
	domain.DimPacote:              func(r *domain.Record) string { return r.Pacote },
	domain.DimRecurso:             func(r *domain.Record) string { return r.Recurso },
	domain.DimTipo:                func(r *domain.Record) string { return r.Tipo },
	domain.DimCentroCusto:         func(r *domain.Record) string { return r.CentroCusto },
	domain.DimContaContabil:       func(r *domain.Record) string { return r.ContaContabil },
	domain.DimFornecedorGerencial: func(r *domain.Record) string { return r.FornecedorGerencial },
}

// MesesComReal devolve os meses distintos com lançamentos realizados,
// em ordem crescente.
func MesesComReal(records []domain.Record) []int {
	seen := make(map[int]bool)
	meses := []int{}
	for i := range records {
		if records[i].Base == domain.BaseRealizado && !seen[records[i].Mes] {
			seen[records[i].Mes] = true
			meses = append(meses, records[i].Mes)
		}
	}
	sort.Ints(meses)
	return meses
}

// GetSummary calcula os totais de topo para o período escolhido.
func GetSummary(records []domain.Record, periodo domain.PeriodoView) domain.SummaryData {
	mesesComReal := MesesComReal(records)
	mesSet := make(map[int]bool, len(mesesComReal))
	for _, m := range mesesComReal {
		mesSet[m] = true
	}

	var orcadoAnual, orcadoYTD, realizadoYTD float64
	for i := range records {
		r := &records[i]
		switch r.Base {
		case domain.BaseOrcado:
			orcadoAnual += r.Executado
			if mesSet[r.Mes] {
				orcadoYTD += r.Executado
			}
		case domain.BaseRealizado:
			realizadoYTD += r.Executado
		}
	}

	var variacao, variacaoPercent float64
	if periodo == domain.PeriodoAnual {
		variacao = realizadoYTD - orcadoAnual
		if orcadoAnual != 0 {
			variacaoPercent = variacao / orcadoAnual * 100
		}
	} else {
		variacao = realizadoYTD - orcadoYTD
		if orcadoYTD != 0 {
			variacaoPercent = variacao / orcadoYTD * 100
		}
	}

	projecaoAnual := 0.0
	if len(mesesComReal) > 0 {
		projecaoAnual = realizadoYTD / float64(len(mesesComReal)) * 12
	}

	return domain.SummaryData{
		OrcadoYTD:       orcadoYTD,
		RealizadoYTD:    realizadoYTD,
		Variacao:        variacao,
		VariacaoPercent: variacaoPercent,
		OrcadoAnual:     orcadoAnual,
		MesesComReal:    mesesComReal,
		ProjecaoAnual:   projecaoAnual,
	}
}

// GetMonthlyData devolve sempre 12 entradas, uma por mês calendário,
// zeradas quando não há dados.
func GetMonthlyData(records []domain.Record) []domain.MonthlyData {
	var orcado, realizado [13]float64
	for i := range records {
		r := &records[i]
		switch r.Base {
		case domain.BaseOrcado:
			orcado[r.Mes] += r.Executado
		case domain.BaseRealizado:
			realizado[r.Mes] += r.Executado
		}
	}

	out := make([]domain.MonthlyData, 0, 12)
	for mes := 1; mes <= 12; mes++ {
		variacao := realizado[mes] - orcado[mes]
		percent := 0.0
		if orcado[mes] != 0 {
			percent = variacao / orcado[mes] * 100
		}
		out = append(out, domain.MonthlyData{
			Mes:             mes,
			MesNome:         domain.MesesPT[mes-1],
			Orcado:          orcado[mes],
			Realizado:       realizado[mes],
			Variacao:        variacao,
			VariacaoPercent: percent,
		})
	}
	return out
}

// GetSemaforo classifica o ritmo de execução YTD contra o orçado YTD.
// O limite inferior é estrito: razão exatamente 0.95 já é amarelo.
func GetSemaforo(realizado, orcado float64) domain.Semaforo {
	if orcado == 0 {
		return domain.SemaforoGreen
	}
	ratio := realizado / orcado
	if ratio < 0.95 {
		return domain.SemaforoGreen
	}
	if ratio <= 1.05 {
		return domain.SemaforoYellow
	}
	return domain.SemaforoRed
}

// GetSemaforoAnual compara a fatia executada do orçamento anual com a
// fatia esperada pelo tempo decorrido, com banda de tolerância de 5 pontos.
func GetSemaforoAnual(realizado, orcadoAnual float64, mesesComReal []int) domain.Semaforo {
	if orcadoAnual == 0 || len(mesesComReal) == 0 {
		return domain.SemaforoGreen
	}
	executado := realizado / orcadoAnual
	esperado := float64(len(mesesComReal)) / 12
	diff := (executado - esperado) * 100
	if diff > 5 {
		return domain.SemaforoRed
	}
	if diff >= -5 {
		return domain.SemaforoYellow
	}
	return domain.SemaforoGreen
}

type groupAcc struct {
	orcadoYTD   float64
	orcadoAnual float64
	realizado   float64
}

// GroupBy particiona os registros pelo valor da dimensão e agrega orçado
// e realizado por grupo. O resultado vem ordenado por orçado decrescente
// (ordenação estável: empates mantêm a ordem de primeiro encontro).
func GroupBy(records []domain.Record, dim domain.Dimension, mesesComReal []int, periodo domain.PeriodoView) []domain.GroupedData {
	accessor, ok := dimensionAccessors[dim]
	if !ok {
		return nil
	}

	mesSet := make(map[int]bool, len(mesesComReal))
	for _, m := range mesesComReal {
		mesSet[m] = true
	}

	groups := make(map[string]*groupAcc)
	var order []string

	for i := range records {
		r := &records[i]
		key := accessor(r)
		g, exists := groups[key]
		if !exists {
			g = &groupAcc{}
			groups[key] = g
			order = append(order, key)
		}
		switch r.Base {
		case domain.BaseOrcado:
			g.orcadoAnual += r.Executado
			if mesSet[r.Mes] {
				g.orcadoYTD += r.Executado
			}
		case domain.BaseRealizado:
			g.realizado += r.Executado
		}
	}

	out := make([]domain.GroupedData, 0, len(order))
	for _, nome := range order {
		g := groups[nome]

		orcado := g.orcadoYTD
		if periodo == domain.PeriodoAnual {
			orcado = g.orcadoAnual
		}

		variacao := g.realizado - orcado
		percent := 0.0
		if orcado != 0 {
			percent = variacao / orcado * 100
		}

		var semaforo domain.Semaforo
		if periodo == domain.PeriodoAnual {
			semaforo = GetSemaforoAnual(g.realizado, g.orcadoAnual, mesesComReal)
		} else {
			semaforo = GetSemaforo(g.realizado, orcado)
		}

		out = append(out, domain.GroupedData{
			Nome:            nome,
			Orcado:          orcado,
			Realizado:       g.realizado,
			Variacao:        variacao,
			VariacaoPercent: percent,
			Semaforo:        semaforo,
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Orcado > out[j].Orcado })
	return out
}

// FilterByDimension devolve o subconjunto cujo valor da dimensão é
// exatamente o informado (estágio de drill-down).
func FilterByDimension(records []domain.Record, dim domain.Dimension, value string) []domain.Record {
	accessor, ok := dimensionAccessors[dim]
	if !ok {
		return nil
	}
	out := []domain.Record{}
	for i := range records {
		if accessor(&records[i]) == value {
			out = append(out, records[i])
		}
	}
	return out
}

// OmitEmptyGroups descarta grupos sem orçado e sem realizado, como nas
// visões de drill-down.
func OmitEmptyGroups(groups []domain.GroupedData) []domain.GroupedData {
	out := make([]domain.GroupedData, 0, len(groups))
	for _, g := range groups {
		if g.Orcado > 0 || g.Realizado > 0 {
			out = append(out, g)
		}
	}
	return out
}
