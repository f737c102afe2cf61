// Package datajud queries the CNJ public judicial API (Datajud).
package datajud

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"JurisMonitor/internal/domain"
	"JurisMonitor/internal/metrics"
	"JurisMonitor/internal/npu"
	"JurisMonitor/internal/ports"
	"JurisMonitor/internal/tribunal"
)

// DefaultBaseURL is the public Datajud host.
const DefaultBaseURL = "https://api-publica.datajud.cnj.jus.br"

// Config carries the client settings.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration

	// BreakerFailures consecutive transport or 5xx failures open a tribunal's breaker.
	BreakerFailures uint32
	BreakerCooldown time.Duration

	// MaxBodyBytes caps how much of a response is read.
	MaxBodyBytes int64
}

// Client queries one tribunal endpoint per call. It does not pace requests;
// callers share a rate limiter for that.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker[[]byte]
}

var _ ports.JudicialClient = (*Client)(nil)

// NewClient builds a client with defaults for empty settings.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = 5
	}
	if cfg.BreakerCooldown <= 0 {
		cfg.BreakerCooldown = 2 * time.Minute
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 8 << 20
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		cfg:      cfg,
		http:     &http.Client{Timeout: cfg.Timeout},
		logger:   logger.With("component", "datajud"),
		breakers: make(map[string]*gobreaker.CircuitBreaker[[]byte]),
	}
}

// Ready reports whether credentials are configured.
func (c *Client) Ready() error {
	if c.cfg.APIKey == "" {
		return &domain.QueryError{Kind: domain.KindMissingCredentials, Message: "datajud api key not configured"}
	}
	return nil
}

// Query looks up a process number on the tribunal's endpoint.
func (c *Client) Query(ctx context.Context, number, acronym string) (result domain.QueryResult, err error) {
	start := time.Now()
	result.Tribunal = acronym
	defer func() {
		elapsed := time.Since(start)
		result.ElapsedMs = elapsed.Milliseconds()
		metrics.QueryDuration.WithLabelValues(acronym).Observe(elapsed.Seconds())
	}()

	if err := c.Ready(); err != nil {
		return result, err
	}

	endpoint, ok := tribunal.Endpoint(acronym)
	if !ok {
		return result, &domain.QueryError{Kind: domain.KindUnsupportedTribunal, Message: fmt.Sprintf("no endpoint for tribunal %q", acronym)}
	}
	result.Endpoint = endpoint

	digits := npu.Digits(number)
	body, err := c.breaker(acronym).Execute(func() ([]byte, error) {
		return c.post(ctx, endpoint, digits)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return result, &domain.QueryError{Kind: domain.KindCircuitOpen, Message: fmt.Sprintf("%s: %v", acronym, err)}
		}
		return result, err
	}

	var payload searchResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return result, &domain.QueryError{Kind: domain.KindMalformed, Message: err.Error()}
	}

	if len(payload.Hits.Hits) == 0 {
		return result, nil
	}

	src := payload.Hits.Hits[0].Source
	result.Found = true
	result.Number = src.Number
	result.FiledAt = src.FiledAt
	result.Class = domain.ProcessClass{Code: int(src.Class.Code), Name: src.Class.Name}
	result.JudgingBody = src.JudgingBody.Name
	result.Movements = toRecords(src.Movements)

	return result, nil
}

func (c *Client) post(ctx context.Context, endpoint, digits string) ([]byte, error) {
	payload, err := json.Marshal(searchRequest{Query: matchQuery{Match: map[string]string{"numeroProcesso": digits}}})
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, &domain.QueryError{Kind: domain.KindConnection, Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "ApiKey "+c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.cfg.MaxBodyBytes+1))
	if err != nil {
		return nil, transportError(err)
	}
	if int64(len(body)) > c.cfg.MaxBodyBytes {
		return nil, &domain.QueryError{
			Kind:       domain.KindMalformed,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("response body exceeds %d bytes", c.cfg.MaxBodyBytes),
		}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &domain.QueryError{
			Kind:       domain.KindHTTP,
			StatusCode: resp.StatusCode,
			Message:    snippet(body),
		}
	}

	return body, nil
}

func (c *Client) breaker(acronym string) *gobreaker.CircuitBreaker[[]byte] {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cb, ok := c.breakers[acronym]; ok {
		return cb
	}

	threshold := c.cfg.BreakerFailures
	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        acronym,
		MaxRequests: 1,
		Timeout:     c.cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: breakerSuccess,
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn("circuit breaker state change", "tribunal", name, "from", from.String(), "to", to.String())
			metrics.BreakerState.WithLabelValues(name).Set(metrics.StateValue(to))
			metrics.BreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})
	c.breakers[acronym] = cb
	return cb
}

// breakerSuccess keeps client-side problems (4xx, caller cancellation) from tripping the breaker.
func breakerSuccess(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	var qerr *domain.QueryError
	if errors.As(err, &qerr) && qerr.Kind == domain.KindHTTP {
		return qerr.StatusCode < http.StatusInternalServerError
	}
	return false
}

func transportError(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &domain.QueryError{Kind: domain.KindTimeout, Message: err.Error()}
	}
	return &domain.QueryError{Kind: domain.KindConnection, Message: err.Error()}
}

func snippet(body []byte) string {
	const limit = 200
	s := strings.TrimSpace(string(body))
	if len(s) > limit {
		return s[:limit]
	}
	return s
}

func toRecords(movements []movement) []domain.MovementRecord {
	records := make([]domain.MovementRecord, 0, len(movements))
	for _, m := range movements {
		rec := domain.MovementRecord{
			Code:      int(m.Code),
			Name:      m.Name,
			Timestamp: m.Timestamp,
		}
		if raw := bytes.TrimSpace(m.Complements); len(raw) > 0 && !bytes.Equal(raw, []byte("null")) {
			rec.Complements = append([]byte(nil), raw...)
		}
		records = append(records, rec)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return sortKey(records[i].Timestamp) > sortKey(records[j].Timestamp)
	})
	return records
}

// sortKey orders parseable timestamps by UTC instant and falls back to the raw text.
func sortKey(raw string) string {
	if t, ok := domain.ParseMovementTime(raw); ok {
		return t.UTC().Format("2006-01-02T15:04:05.000000000")
	}
	return raw
}

type searchRequest struct {
	Query matchQuery `json:"query"`
}

type matchQuery struct {
	Match map[string]string `json:"match"`
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source source `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

type source struct {
	Number  string `json:"numeroProcesso"`
	FiledAt string `json:"dataAjuizamento"`
	Class   struct {
		Code flexInt `json:"codigo"`
		Name string  `json:"nome"`
	} `json:"classe"`
	JudgingBody struct {
		Name string `json:"nome"`
	} `json:"orgaoJulgador"`
	Movements []movement `json:"movimentos"`
}

type movement struct {
	Code        flexInt         `json:"codigo"`
	Name        string          `json:"nome"`
	Timestamp   string          `json:"dataHora"`
	Complements json.RawMessage `json:"complementosTabelados"`
}

// flexInt accepts codes sent either as numbers or as numeric strings.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		*f = flexInt(n)
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("parse code %q: %w", s, err)
	}
	*f = flexInt(int(v))
	return nil
}
