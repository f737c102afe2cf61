package tribunal

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

type statePattern struct {
	expr *regexp.Regexp
	uf   string
}

// statePatterns is evaluated in order and the first hit wins. Longer state
// names come before their prefixes, then capitals and federal seats, then
// bare abbreviations written after a separator ("/SP", "- SP", "(SP)").
var statePatterns = compileStatePatterns([][2]string{
	{"MATO GROSSO DO SUL", "MS"},
	{"RIO GRANDE DO SUL", "RS"},
	{"RIO GRANDE DO NORTE", "RN"},
	{"DISTRITO FEDERAL", "DF"},
	{"ESPIRITO SANTO", "ES"},
	{"SANTA CATARINA", "SC"},
	{"RIO DE JANEIRO", "RJ"},
	{"MINAS GERAIS", "MG"},
	{"SAO PAULO", "SP"},
	{"MATO GROSSO", "MT"},
	{"PERNAMBUCO", "PE"},
	{"TOCANTINS", "TO"},
	{"MARANHAO", "MA"},
	{"RONDONIA", "RO"},
	{"AMAZONAS", "AM"},
	{"PARAIBA", "PB"},
	{"SERGIPE", "SE"},
	{"ALAGOAS", "AL"},
	{"RORAIMA", "RR"},
	{"PARANA", "PR"},
	{"CEARA", "CE"},
	{"PIAUI", "PI"},
	{"GOIAS", "GO"},
	{"BAHIA", "BA"},
	{"AMAPA", "AP"},
	{"ACRE", "AC"},
	{"PARA", "PA"},

	{"BELO HORIZONTE", "MG"},
	{"FLORIANOPOLIS", "SC"},
	{"PORTO ALEGRE", "RS"},
	{"CAMPO GRANDE", "MS"},
	{"PORTO VELHO", "RO"},
	{"JOAO PESSOA", "PB"},
	{"RIO BRANCO", "AC"},
	{"BOA VISTA", "RR"},
	{"SAO LUIS", "MA"},
	{"FORTALEZA", "CE"},
	{"TERESINA", "PI"},
	{"CURITIBA", "PR"},
	{"SALVADOR", "BA"},
	{"BRASILIA", "DF"},
	{"CAMPINAS", "SP"},
	{"GOIANIA", "GO"},
	{"ARACAJU", "SE"},
	{"VITORIA", "ES"},
	{"NITEROI", "RJ"},
	{"RECIFE", "PE"},
	{"CUIABA", "MT"},
	{"MACEIO", "AL"},
	{"MANAUS", "AM"},
	{"MACAPA", "AP"},
	{"PALMAS", "TO"},
	{"SANTOS", "SP"},
	{"BELEM", "PA"},
	{"NATAL", "RN"},
})

var abbreviationExpr = regexp.MustCompile(`(?:/|-|\()\s*(AC|AL|AM|AP|BA|CE|DF|ES|GO|MA|MG|MS|MT|PA|PB|PE|PI|PR|RJ|RN|RO|RR|RS|SC|SE|SP|TO)\b`)

func compileStatePatterns(pairs [][2]string) []statePattern {
	out := make([]statePattern, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, statePattern{
			expr: regexp.MustCompile(`\b` + regexp.QuoteMeta(p[0]) + `\b`),
			uf:   p[1],
		})
	}
	return out
}

// StateFromJudgingBody infers a UF from a judging-body name such as
// "1ª Vara Federal de Campo Grande". The match is heuristic.
func StateFromJudgingBody(name string) (string, bool) {
	folded := foldName(name)
	if folded == "" {
		return "", false
	}

	for _, p := range statePatterns {
		if p.expr.MatchString(folded) {
			return p.uf, true
		}
	}

	if m := abbreviationExpr.FindStringSubmatch(folded); m != nil {
		return m[1], true
	}
	return "", false
}

func foldName(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}
	return strings.ToUpper(strings.Join(strings.Fields(folded), " "))
}
