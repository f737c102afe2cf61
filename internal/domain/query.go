package domain

import "fmt"

// ErrorKind classifies judicial API failures.
type ErrorKind string

const (
	KindMissingCredentials  ErrorKind = "missing_credentials"
	KindUnsupportedTribunal ErrorKind = "unsupported_tribunal"
	KindTimeout             ErrorKind = "timeout"
	KindConnection          ErrorKind = "connection_failure"
	KindHTTP                ErrorKind = "http_error"
	KindMalformed           ErrorKind = "malformed_response"
	KindCircuitOpen         ErrorKind = "circuit_open"
)

// QueryError is returned by the judicial API client.
type QueryError struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
}

func (e *QueryError) Error() string {
	if e.Kind == KindHTTP {
		return fmt.Sprintf("%s: HTTP %d: %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is matches QueryErrors by kind so callers can test against a template.
func (e *QueryError) Is(target error) bool {
	t, ok := target.(*QueryError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// ProcessClass is the procedural class reported by the court.
type ProcessClass struct {
	Code int    `json:"code"`
	Name string `json:"name"`
}

// QueryResult is the normalized answer for one process number.
type QueryResult struct {
	Tribunal    string
	Endpoint    string
	Found       bool
	Number      string
	FiledAt     string
	Class       ProcessClass
	JudgingBody string
	Movements   []MovementRecord
	ElapsedMs   int64
}
