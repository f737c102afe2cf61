// Package tribunal maps NPU routing codes to courts and their Datajud endpoints.
package tribunal

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"JurisMonitor/internal/domain"
	"JurisMonitor/internal/npu"
)

// ErrUnknownTribunal is returned when a routing code has no table entry.
var ErrUnknownTribunal = errors.New("tribunal: unknown routing code")

// Info describes a single court.
type Info struct {
	Code     npu.RoutingCode `json:"code"`
	Acronym  string          `json:"acronym"`
	Name     string          `json:"name"`
	UF       string          `json:"uf,omitempty"`
	Justice  Justice         `json:"justice"`
	Endpoint string          `json:"endpoint"`
}

// StateQuerier performs the live lookup used to disambiguate federal circuits.
type StateQuerier interface {
	Query(ctx context.Context, number, acronym string) (domain.QueryResult, error)
}

// Router keeps routing-code and acronym indexes over the tribunal table.
type Router struct {
	byCode    map[npu.RoutingCode]Info
	byAcronym map[string]Info
	querier   StateQuerier
}

var builtin = NewRegistry(builtinTable()...)

// NewRegistry builds a router over the given entries without live lookup.
func NewRegistry(entries ...Info) *Router {
	r := &Router{
		byCode:    make(map[npu.RoutingCode]Info, len(entries)),
		byAcronym: make(map[string]Info, len(entries)),
	}
	for _, info := range entries {
		r.Register(info)
	}
	return r
}

// NewRouter returns a router over the built-in table; querier may be nil.
func NewRouter(querier StateQuerier) *Router {
	return &Router{
		byCode:    builtin.byCode,
		byAcronym: builtin.byAcronym,
		querier:   querier,
	}
}

// Register adds or replaces a table entry.
func (r *Router) Register(info Info) {
	if r.byCode == nil {
		r.byCode = map[npu.RoutingCode]Info{}
	}
	if r.byAcronym == nil {
		r.byAcronym = map[string]Info{}
	}
	r.byCode[info.Code] = info
	r.byAcronym[info.Acronym] = info
}

// Resolve returns the tribunal for a routing code.
func (r *Router) Resolve(code npu.RoutingCode) (Info, bool) {
	info, ok := r.byCode[code]
	return info, ok
}

// ResolveNPU parses the number and resolves its tribunal.
func (r *Router) ResolveNPU(number string) (Info, error) {
	code, err := npu.Parse(number)
	if err != nil {
		return Info{}, err
	}
	info, ok := r.Resolve(code)
	if !ok {
		return Info{}, fmt.Errorf("%w: %s", ErrUnknownTribunal, code)
	}
	return info, nil
}

// Endpoint returns the Datajud path for an acronym.
func (r *Router) Endpoint(acronym string) (string, bool) {
	info, ok := r.byAcronym[acronym]
	if !ok || info.Endpoint == "" {
		return "", false
	}
	return info.Endpoint, true
}

// All lists the table sorted by routing code.
func (r *Router) All() []Info {
	out := make([]Info, 0, len(r.byCode))
	for _, info := range r.byCode {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// ResolveWithState tries to find the UF of a federal circuit process by
// querying the court once and reading the judging body. It returns false when
// the code is not an ambiguous federal circuit, the query fails or nothing matches.
func (r *Router) ResolveWithState(ctx context.Context, number string, code npu.RoutingCode) (string, bool) {
	info, ok := r.Resolve(code)
	if !ok || info.Justice != JusticeFederal || info.UF != "" || r.querier == nil {
		return "", false
	}

	result, err := r.querier.Query(ctx, number, info.Acronym)
	if err != nil || !result.Found {
		return "", false
	}
	return StateFromJudgingBody(result.JudgingBody)
}

// Endpoint returns the built-in Datajud path for an acronym.
func Endpoint(acronym string) (string, bool) {
	return builtin.Endpoint(acronym)
}
