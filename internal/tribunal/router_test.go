package tribunal

import (
	"context"
	"errors"
	"strings"
	"testing"

	"JurisMonitor/internal/domain"
	"JurisMonitor/internal/npu"
)

type fakeQuerier struct {
	result domain.QueryResult
	err    error
	calls  int
}

func (f *fakeQuerier) Query(ctx context.Context, number, acronym string) (domain.QueryResult, error) {
	f.calls++
	return f.result, f.err
}

func TestResolveSpotChecks(t *testing.T) {
	t.Parallel()

	r := NewRouter(nil)

	tjsp, ok := r.Resolve("826")
	if !ok {
		t.Fatalf("826 should resolve")
	}
	if tjsp.Acronym != "TJSP" || tjsp.UF != "SP" || tjsp.Justice != JusticeState {
		t.Fatalf("unexpected 826: %+v", tjsp)
	}

	trt1, ok := r.Resolve("501")
	if !ok || trt1.Acronym != "TRT1" {
		t.Fatalf("unexpected 501: %+v", trt1)
	}

	stj, ok := r.Resolve("300")
	if !ok || stj.Acronym != "STJ" || stj.UF != "" {
		t.Fatalf("unexpected 300: %+v", stj)
	}

	if info, ok := r.Resolve("999"); ok {
		t.Fatalf("999 should not resolve, got %+v", info)
	}
}

func TestTableCoverage(t *testing.T) {
	t.Parallel()

	all := NewRouter(nil).All()
	if len(all) != 91 {
		t.Fatalf("expected 91 tribunals, got %d", len(all))
	}

	counts := map[Justice]int{}
	acronyms := map[string]bool{}
	for _, info := range all {
		counts[info.Justice]++
		if acronyms[info.Acronym] {
			t.Fatalf("duplicate acronym %s", info.Acronym)
		}
		acronyms[info.Acronym] = true
		if !strings.HasPrefix(info.Endpoint, "/api_publica_") || !strings.HasSuffix(info.Endpoint, "/_search") {
			t.Fatalf("bad endpoint for %s: %s", info.Acronym, info.Endpoint)
		}
		if len(info.Code) != 3 {
			t.Fatalf("bad code for %s: %s", info.Acronym, info.Code)
		}
	}

	want := map[Justice]int{
		JusticeSuperior:  4,
		JusticeFederal:   6,
		JusticeLabor:     24,
		JusticeElectoral: 27,
		JusticeState:     27,
		JusticeMilitary:  3,
	}
	for justice, n := range want {
		if counts[justice] != n {
			t.Fatalf("justice %s: expected %d entries, got %d", justice, n, counts[justice])
		}
	}
}

func TestStateCourtsAlphabeticalAssignment(t *testing.T) {
	t.Parallel()

	r := NewRouter(nil)
	cases := map[npu.RoutingCode]string{
		"801": "TJAC",
		"807": "TJDF",
		"813": "TJMG",
		"819": "TJRJ",
		"821": "TJRS",
		"827": "TJTO",
		"626": "TRE-SP",
		"913": "TJMMG",
		"406": "TRF6",
		"524": "TRT24",
	}
	for code, acronym := range cases {
		info, ok := r.Resolve(code)
		if !ok || info.Acronym != acronym {
			t.Fatalf("code %s: expected %s, got %+v", code, acronym, info)
		}
	}

	if ep, _ := r.Endpoint("TJDF"); ep != "/api_publica_tjdft/_search" {
		t.Fatalf("unexpected TJDF endpoint: %s", ep)
	}
	if ep, _ := Endpoint("TRE-SP"); ep != "/api_publica_tre-sp/_search" {
		t.Fatalf("unexpected TRE-SP endpoint: %s", ep)
	}
	if _, ok := Endpoint("XYZ"); ok {
		t.Fatalf("unknown acronym should have no endpoint")
	}
}

func TestResolveNPU(t *testing.T) {
	t.Parallel()

	r := NewRouter(nil)
	info, err := r.ResolveNPU("0000001-23.2024.8.26.0100")
	if err != nil || info.Acronym != "TJSP" {
		t.Fatalf("unexpected result: %+v, %v", info, err)
	}

	if _, err := r.ResolveNPU("123"); !errors.Is(err, npu.ErrInvalidFormat) {
		t.Fatalf("expected ErrInvalidFormat, got %v", err)
	}
	if _, err := r.ResolveNPU("0000001-23.2024.9.99.0100"); !errors.Is(err, ErrUnknownTribunal) {
		t.Fatalf("expected ErrUnknownTribunal, got %v", err)
	}
}

func TestStateFromJudgingBody(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		want string
		ok   bool
	}{
		{"1ª Vara Federal de Campo Grande", "MS", true},
		{"JUIZADO ESPECIAL FEDERAL DE SÃO PAULO", "SP", true},
		{"Seção Judiciária do Mato Grosso do Sul", "MS", true},
		{"Seção Judiciária de Mato Grosso", "MT", true},
		{"2ª Vara Federal de Porto Alegre", "RS", true},
		{"Vara Federal de Florianópolis", "SC", true},
		{"3ª Vara Federal Cível - Ribeirão Preto/SP", "SP", true},
		{"Vara Federal de Ponta Grossa", "", false},
		{"", "", false},
	}

	for _, tc := range cases {
		got, ok := StateFromJudgingBody(tc.name)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("StateFromJudgingBody(%q) = %q, %v; want %q, %v", tc.name, got, ok, tc.want, tc.ok)
		}
	}
}

func TestResolveWithState(t *testing.T) {
	t.Parallel()

	q := &fakeQuerier{result: domain.QueryResult{Found: true, JudgingBody: "1ª Vara Federal de Campinas"}}
	r := NewRouter(q)

	uf, ok := r.ResolveWithState(context.Background(), "50001234520234036105", "403")
	if !ok || uf != "SP" {
		t.Fatalf("expected SP, got %q %v", uf, ok)
	}
	if q.calls != 1 {
		t.Fatalf("expected exactly one live query, got %d", q.calls)
	}

	if _, ok := r.ResolveWithState(context.Background(), "00000012320248260100", "826"); ok {
		t.Fatalf("state courts must not use live lookup")
	}
	if _, ok := r.ResolveWithState(context.Background(), "00000012320234060100", "406"); ok {
		t.Fatalf("TRF6 has a static UF and must not use live lookup")
	}
	if q.calls != 1 {
		t.Fatalf("unexpected extra live queries: %d", q.calls)
	}
}

func TestResolveWithStateFailures(t *testing.T) {
	t.Parallel()

	failing := NewRouter(&fakeQuerier{err: &domain.QueryError{Kind: domain.KindTimeout, Message: "slow"}})
	if _, ok := failing.ResolveWithState(context.Background(), "50001234520234016105", "401"); ok {
		t.Fatalf("query failure must yield no state")
	}

	notFound := NewRouter(&fakeQuerier{result: domain.QueryResult{Found: false}})
	if _, ok := notFound.ResolveWithState(context.Background(), "50001234520234016105", "401"); ok {
		t.Fatalf("not found must yield no state")
	}

	noMatch := NewRouter(&fakeQuerier{result: domain.QueryResult{Found: true, JudgingBody: "Vara Única"}})
	if _, ok := noMatch.ResolveWithState(context.Background(), "50001234520234016105", "401"); ok {
		t.Fatalf("unmatched judging body must yield no state")
	}

	if _, ok := NewRouter(nil).ResolveWithState(context.Background(), "50001234520234016105", "401"); ok {
		t.Fatalf("router without querier must yield no state")
	}
}
