package tribunal

import (
	"fmt"
	"strconv"
	"strings"

	"JurisMonitor/internal/npu"
)

// Justice is the branch of the judiciary encoded by the NPU justice digit.
type Justice string

const (
	JusticeSuperior  Justice = "superior"
	JusticeFederal   Justice = "federal"
	JusticeLabor     Justice = "labor"
	JusticeElectoral Justice = "electoral"
	JusticeState     Justice = "state"
	JusticeMilitary  Justice = "state_military"
)

var superiorCourts = []Info{
	{Code: "300", Acronym: "STJ", Name: "Superior Tribunal de Justiça", Justice: JusticeSuperior},
	{Code: "500", Acronym: "TST", Name: "Tribunal Superior do Trabalho", Justice: JusticeSuperior},
	{Code: "600", Acronym: "TSE", Name: "Tribunal Superior Eleitoral", Justice: JusticeSuperior},
	{Code: "700", Acronym: "STM", Name: "Superior Tribunal Militar", Justice: JusticeSuperior},
}

var federalCourts = []Info{
	{Code: "401", Acronym: "TRF1", Name: "Tribunal Regional Federal da 1ª Região", Justice: JusticeFederal},
	{Code: "402", Acronym: "TRF2", Name: "Tribunal Regional Federal da 2ª Região", Justice: JusticeFederal},
	{Code: "403", Acronym: "TRF3", Name: "Tribunal Regional Federal da 3ª Região", Justice: JusticeFederal},
	{Code: "404", Acronym: "TRF4", Name: "Tribunal Regional Federal da 4ª Região", Justice: JusticeFederal},
	{Code: "405", Acronym: "TRF5", Name: "Tribunal Regional Federal da 5ª Região", Justice: JusticeFederal},
	{Code: "406", Acronym: "TRF6", Name: "Tribunal Regional Federal da 6ª Região", UF: "MG", Justice: JusticeFederal},
}

// laborRegionUF lists the seat state of each labor region; multi-state regions are left empty.
var laborRegionUF = [24]string{
	"RJ", "SP", "MG", "RS", "BA", "PE", "CE", "", "PR", "",
	"", "SC", "PB", "", "SP", "MA", "ES", "GO", "AL", "SE",
	"RN", "PI", "MT", "MS",
}

// states is the alphabetical-by-state order used by justice digits 6 and 8.
var states = [27]struct {
	UF   string
	Name string
}{
	{"AC", "Acre"},
	{"AL", "Alagoas"},
	{"AM", "Amazonas"},
	{"AP", "Amapá"},
	{"BA", "Bahia"},
	{"CE", "Ceará"},
	{"DF", "Distrito Federal e dos Territórios"},
	{"ES", "Espírito Santo"},
	{"GO", "Goiás"},
	{"MA", "Maranhão"},
	{"MT", "Mato Grosso"},
	{"MS", "Mato Grosso do Sul"},
	{"MG", "Minas Gerais"},
	{"PA", "Pará"},
	{"PB", "Paraíba"},
	{"PR", "Paraná"},
	{"PE", "Pernambuco"},
	{"PI", "Piauí"},
	{"RJ", "Rio de Janeiro"},
	{"RN", "Rio Grande do Norte"},
	{"RS", "Rio Grande do Sul"},
	{"RO", "Rondônia"},
	{"RR", "Roraima"},
	{"SC", "Santa Catarina"},
	{"SE", "Sergipe"},
	{"SP", "São Paulo"},
	{"TO", "Tocantins"},
}

var militaryCourts = []Info{
	{Code: "913", Acronym: "TJMMG", Name: "Tribunal de Justiça Militar de Minas Gerais", UF: "MG", Justice: JusticeMilitary},
	{Code: "921", Acronym: "TJMRS", Name: "Tribunal de Justiça Militar do Rio Grande do Sul", UF: "RS", Justice: JusticeMilitary},
	{Code: "926", Acronym: "TJMSP", Name: "Tribunal de Justiça Militar de São Paulo", UF: "SP", Justice: JusticeMilitary},
}

// builtinTable assembles the static routing table with Datajud endpoint paths.
func builtinTable() []Info {
	table := make([]Info, 0, 91)
	table = append(table, superiorCourts...)
	table = append(table, federalCourts...)

	for i, uf := range laborRegionUF {
		region := i + 1
		table = append(table, Info{
			Code:    npu.RoutingCode(fmt.Sprintf("5%02d", region)),
			Acronym: "TRT" + strconv.Itoa(region),
			Name:    fmt.Sprintf("Tribunal Regional do Trabalho da %dª Região", region),
			UF:      uf,
			Justice: JusticeLabor,
		})
	}

	for i, st := range states {
		table = append(table, Info{
			Code:    npu.RoutingCode(fmt.Sprintf("6%02d", i+1)),
			Acronym: "TRE-" + st.UF,
			Name:    "Tribunal Regional Eleitoral - " + st.UF,
			UF:      st.UF,
			Justice: JusticeElectoral,
		})
	}

	for i, st := range states {
		acronym := "TJ" + st.UF
		table = append(table, Info{
			Code:    npu.RoutingCode(fmt.Sprintf("8%02d", i+1)),
			Acronym: acronym,
			Name:    "Tribunal de Justiça do Estado - " + st.Name,
			UF:      st.UF,
			Justice: JusticeState,
		})
	}
	table = append(table, militaryCourts...)

	for i := range table {
		table[i].Endpoint = endpointPath(table[i].Acronym)
	}
	return table
}

// endpointPath builds the Datajud index path; TJDF is published as tjdft.
func endpointPath(acronym string) string {
	index := strings.ToLower(acronym)
	if acronym == "TJDF" {
		index = "tjdft"
	}
	return "/api_publica_" + index + "/_search"
}
