package opex

import (
	"strings"

	"github.com/schollz/closestmatch"

	"opex-service/internal/core/sanitize"
	"opex-service/internal/domain"
)

// Busca textual sobre o snapshot: substring insensível a acento e caixa
// nos campos dimensionais. Quando nada casa, Suggest oferece os valores
// de dimensão mais próximos do termo digitado.

// searchFields são os campos varridos pela busca, na ordem de relevância.
var searchFields = []func(*domain.Record) string{
	func(r *domain.Record) string { return r.Diretoria },
	func(r *domain.Record) string { return r.AreaGrupo1 },
	func(r *domain.Record) string { return r.Pacote },
	func(r *domain.Record) string { return r.Recurso },
	func(r *domain.Record) string { return r.Tipo },
	func(r *domain.Record) string { return r.DescricaoCCusto },
	func(r *domain.Record) string { return r.DescricaoConta },
	func(r *domain.Record) string { return r.NomeFornecedor },
	func(r *domain.Record) string { return r.FornecedorGerencial },
	func(r *domain.Record) string { return r.Historico },
	func(r *domain.Record) string { return r.DescPedido },
}

// SearchRecords devolve até limit registros cujo algum campo dimensional
// contém o termo normalizado. Termo vazio não casa com nada.
func SearchRecords(records []domain.Record, query string, limit int) []domain.Record {
	q := sanitize.Normalize(query)
	if q == "" || limit <= 0 {
		return nil
	}

	var out []domain.Record
	for i := range records {
		r := &records[i]
		for _, field := range searchFields {
			if strings.Contains(sanitize.Normalize(field(r)), q) {
				out = append(out, *r)
				break
			}
		}
		if len(out) >= limit {
			break
		}
	}
	return out
}

// Suggest devolve valores distintos de dimensão mais próximos do termo,
// para orientar o usuário quando a busca não encontra nada.
func Suggest(records []domain.Record, query string, limit int) []string {
	q := sanitize.Normalize(query)
	if q == "" || limit <= 0 {
		return nil
	}

	dims := []domain.Dimension{
		domain.DimDiretoria, domain.DimAreaGrupo1, domain.DimPacote,
		domain.DimRecurso, domain.DimTipo,
	}

	byKey := make(map[string]string)
	var keys []string
	for _, dim := range dims {
		accessor := dimensionAccessors[dim]
		for i := range records {
			v := accessor(&records[i])
			key := sanitize.Normalize(v)
			if key == "" {
				continue
			}
			if _, seen := byKey[key]; !seen {
				byKey[key] = v
				keys = append(keys, key)
			}
		}
	}
	if len(keys) == 0 {
		return nil
	}

	cm := closestmatch.New(keys, []int{3, 4})
	matches := cm.ClosestN(q, limit)

	var out []string
	for _, m := range matches {
		if v, ok := byKey[m]; ok && v != "" {
			out = append(out, v)
		}
	}
	return out
}
