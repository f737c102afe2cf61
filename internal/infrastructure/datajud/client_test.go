package datajud

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"JurisMonitor/internal/domain"
)

const sampleResponse = `{
  "hits": {
    "hits": [{
      "_source": {
        "numeroProcesso": "00000012320248260100",
        "dataAjuizamento": "2024-01-10T00:00:00.000Z",
        "classe": {"codigo": 7, "nome": "Procedimento Comum Cível"},
        "orgaoJulgador": {"nome": "1ª Vara Cível de São Paulo"},
        "movimentos": [
          {"codigo": 26, "nome": "Distribuído", "dataHora": "2024-01-10T09:00:00.000Z"},
          {"codigo": "51", "nome": "Audiência", "dataHora": "2024-03-05T13:00:00-03:00",
           "complementosTabelados": [{"codigo": 1, "nome": "tipo"}]},
          {"codigo": 11010, "nome": "Despacho", "dataHora": "2024-02-01T10:00:00"}
        ]
      }
    }]
  }
}`

func newTestClient(t *testing.T, handler http.HandlerFunc, mutate func(*Config)) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := Config{BaseURL: srv.URL, APIKey: "secret", Timeout: 2 * time.Second}
	if mutate != nil {
		mutate(&cfg)
	}
	return NewClient(cfg, nil)
}

func TestQueryParsesAndSortsMovements(t *testing.T) {
	t.Parallel()

	type captured struct{ path, auth, body string }
	seen := make(chan captured, 1)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		seen <- captured{path: r.URL.Path, auth: r.Header.Get("Authorization"), body: string(body)}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleResponse))
	}, nil)

	res, err := client.Query(context.Background(), "0000001-23.2024.8.26.0100", "TJSP")
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}

	req := <-seen
	if req.path != "/api_publica_tjsp/_search" {
		t.Fatalf("unexpected path: %s", req.path)
	}
	if req.auth != "ApiKey secret" {
		t.Fatalf("unexpected authorization header: %q", req.auth)
	}
	if !strings.Contains(req.body, `"numeroProcesso":"00000012320248260100"`) {
		t.Fatalf("unexpected request body: %s", req.body)
	}

	if !res.Found || res.Tribunal != "TJSP" || res.Endpoint != "/api_publica_tjsp/_search" {
		t.Fatalf("unexpected result header: %+v", res)
	}
	if res.Class.Code != 7 || res.JudgingBody != "1ª Vara Cível de São Paulo" {
		t.Fatalf("unexpected metadata: %+v", res)
	}
	if len(res.Movements) != 3 {
		t.Fatalf("expected 3 movements, got %d", len(res.Movements))
	}

	wantOrder := []int{51, 11010, 26}
	for i, code := range wantOrder {
		if res.Movements[i].Code != code {
			t.Fatalf("movement %d: expected code %d, got %d", i, code, res.Movements[i].Code)
		}
	}
	if string(res.Movements[0].Complements) == "" {
		t.Fatalf("expected complements to be kept")
	}
	if res.Movements[1].Complements != nil {
		t.Fatalf("expected nil complements, got %s", res.Movements[1].Complements)
	}
	if res.ElapsedMs < 0 {
		t.Fatalf("elapsed must be set")
	}
}

func TestQueryNotFound(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"hits":{"total":{"value":0},"hits":[]}}`))
	}, nil)

	res, err := client.Query(context.Background(), "00000012320248260100", "TJSP")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Found || len(res.Movements) != 0 {
		t.Fatalf("expected not found, got %+v", res)
	}
}

func TestQueryHTTPError(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}, nil)

	_, err := client.Query(context.Background(), "00000012320248260100", "TJSP")
	var qerr *domain.QueryError
	if !errors.As(err, &qerr) || qerr.Kind != domain.KindHTTP || qerr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected HTTP 500 query error, got %v", err)
	}
}

func TestQueryMalformed(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"hits": [`))
	}, nil)

	_, err := client.Query(context.Background(), "00000012320248260100", "TJSP")
	if !errors.Is(err, &domain.QueryError{Kind: domain.KindMalformed}) {
		t.Fatalf("expected malformed response error, got %v", err)
	}
}

func TestQueryRejectsOversizedBody(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleResponse))
	}, func(cfg *Config) {
		cfg.MaxBodyBytes = 64
	})

	_, err := client.Query(context.Background(), "00000012320248260100", "TJSP")
	var qerr *domain.QueryError
	if !errors.As(err, &qerr) || qerr.Kind != domain.KindMalformed || !strings.Contains(qerr.Message, "exceeds 64 bytes") {
		t.Fatalf("expected oversized body error, got %v", err)
	}
}

func TestQueryMissingCredentialsSendsNothing(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}, func(cfg *Config) { cfg.APIKey = "" })

	if err := client.Ready(); err == nil {
		t.Fatalf("Ready should report missing credentials")
	}
	_, err := client.Query(context.Background(), "00000012320248260100", "TJSP")
	if !errors.Is(err, &domain.QueryError{Kind: domain.KindMissingCredentials}) {
		t.Fatalf("expected missing credentials, got %v", err)
	}
	if n := calls.Load(); n != 0 {
		t.Fatalf("expected zero requests, got %d", n)
	}
}

func TestQueryUnsupportedTribunal(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("no request expected")
	}, nil)

	_, err := client.Query(context.Background(), "00000012320248260100", "TJXX")
	if !errors.Is(err, &domain.QueryError{Kind: domain.KindUnsupportedTribunal}) {
		t.Fatalf("expected unsupported tribunal, got %v", err)
	}
}

func TestQueryTimeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, func(cfg *Config) { cfg.Timeout = 50 * time.Millisecond })
	defer close(release)

	_, err := client.Query(context.Background(), "00000012320248260100", "TJSP")
	if !errors.Is(err, &domain.QueryError{Kind: domain.KindTimeout}) {
		t.Fatalf("expected timeout, got %v", err)
	}
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}, func(cfg *Config) {
		cfg.BreakerFailures = 2
		cfg.BreakerCooldown = time.Hour
	})

	for i := 0; i < 2; i++ {
		if _, err := client.Query(context.Background(), "00000012320248260100", "TJSP"); err == nil {
			t.Fatalf("expected failure on call %d", i)
		}
	}

	_, err := client.Query(context.Background(), "00000012320248260100", "TJSP")
	if !errors.Is(err, &domain.QueryError{Kind: domain.KindCircuitOpen}) {
		t.Fatalf("expected open circuit, got %v", err)
	}
	if n := calls.Load(); n != 2 {
		t.Fatalf("expected the open breaker to short-circuit, got %d calls", n)
	}

	// Breakers are per tribunal.
	if _, err := client.Query(context.Background(), "00000012320248130100", "TJMG"); errors.Is(err, &domain.QueryError{Kind: domain.KindCircuitOpen}) {
		t.Fatalf("TJMG breaker should still be closed")
	}
}

func TestClientErrorsDoNotTripBreaker(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}, func(cfg *Config) { cfg.BreakerFailures = 1 })

	for i := 0; i < 3; i++ {
		_, err := client.Query(context.Background(), "00000012320248260100", "TJSP")
		if !errors.Is(err, &domain.QueryError{Kind: domain.KindHTTP}) {
			t.Fatalf("call %d: expected HTTP error, got %v", i, err)
		}
	}
}

func TestFlexInt(t *testing.T) {
	t.Parallel()

	cases := map[string]int{`12`: 12, `"34"`: 34, `null`: 0, `"56.0"`: 56}
	for in, want := range cases {
		var f flexInt
		if err := f.UnmarshalJSON([]byte(in)); err != nil {
			t.Fatalf("UnmarshalJSON(%s): %v", in, err)
		}
		if int(f) != want {
			t.Fatalf("UnmarshalJSON(%s) = %d, want %d", in, f, want)
		}
	}

	var f flexInt
	if err := f.UnmarshalJSON([]byte(`"abc"`)); err == nil {
		t.Fatalf("expected error for non-numeric code")
	}
}
