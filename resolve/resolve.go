// Package resolve computes named quantities whose formulas depend on other
// named quantities, the way result sheets chain correction factors and
// conversions.
//
// A [Sheet] holds fixed values and formulas. Resolving a formula first
// resolves every formula it references, each in a nested sub-call
// evaluation, then evaluates the formula itself against the collected values.
package resolve

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/labtools/formula"
	"github.com/labtools/formula/internal/log"
)

var (
	ErrUnknownQuantity = errors.New("unknown quantity")
	ErrCycle           = errors.New("circular reference")
)

type quantity struct {
	value     interface{}
	formula   string
	isFormula bool
}

// Sheet is a set of named quantities. It is not safe for concurrent
// modification, but resolving never modifies it.
type Sheet struct {
	quantities map[string]quantity
	logger     *slog.Logger
	decimals   int
}

// Option configures a Sheet.
type Option func(*Sheet)

// WithLogger sets the logger used to trace evaluations at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Sheet) {
		s.logger = logger
	}
}

// WithDecimals sets the number of decimals used by [Sheet.Format]. A
// negative value keeps the shortest exact representation.
func WithDecimals(decimals int) Option {
	return func(s *Sheet) {
		s.decimals = decimals
	}
}

// New creates an empty sheet.
func New(opts ...Option) *Sheet {
	s := &Sheet{
		quantities: map[string]quantity{},
		logger:     log.Discard(),
		decimals:   -1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Set binds a fixed value. Names are normalized like formula variables. A
// nil value removes the quantity, the same as a variable left unbound.
func (s *Sheet) Set(name string, value interface{}) {
	if value == nil {
		delete(s.quantities, formula.Normalize(name))
		return
	}
	s.quantities[formula.Normalize(name)] = quantity{value: value}
}

// Define binds a formula.
func (s *Sheet) Define(name, expression string) {
	s.quantities[formula.Normalize(name)] = quantity{formula: expression, isFormula: true}
}

// Names returns the normalized names of all quantities, sorted.
func (s *Sheet) Names() []string {
	names := maps.Keys(s.quantities)
	slices.Sort(names)
	return names
}

// Resolve computes one quantity. The requested quantity is evaluated as a
// top-level call, so it may not rebind `pi` or `e`; the formulas it depends on
// are evaluated as sub-calls.
func (s *Sheet) Resolve(name string) (float64, error) {
	r := &resolution{sheet: s, memo: map[string]float64{}}
	return r.resolve(formula.Normalize(name), false)
}

// ResolveAll computes every quantity. Failures are collected rather than
// stopping the run, and the values that did resolve are returned alongside
// the combined error.
func (s *Sheet) ResolveAll() (map[string]float64, error) {
	var result *multierror.Error
	values := make(map[string]float64, len(s.quantities))
	for _, name := range s.Names() {
		v, err := s.Resolve(name)
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		values[name] = v
	}
	return values, result.ErrorOrNil()
}

// Format renders a value with the sheet's decimals.
func (s *Sheet) Format(v float64) string {
	return FormatResult(v, s.decimals)
}

// FormatResult renders v with a fixed number of decimals, or the shortest
// exact representation when decimals is negative.
func FormatResult(v float64, decimals int) string {
	return strconv.FormatFloat(v, 'f', decimals, 64)
}

// resolution carries the state of one Resolve call.
type resolution struct {
	sheet *Sheet
	memo  map[string]float64
	stack []string
}

func (r *resolution) resolve(name string, sub bool) (float64, error) {
	q, ok := r.sheet.quantities[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownQuantity, name)
	}
	if !q.isFormula {
		return formula.Coerce(q.value), nil
	}
	if v, ok := r.memo[name]; ok {
		return v, nil
	}
	if slices.Contains(r.stack, name) {
		path := append(slices.Clone(r.stack), name)
		return 0, fmt.Errorf("%w: %s", ErrCycle, strings.Join(path, " -> "))
	}

	r.stack = append(r.stack, name)
	defer func() {
		r.stack = r.stack[:len(r.stack)-1]
	}()

	refs, ferr := formula.References(q.formula)
	if ferr != nil {
		return 0, fmt.Errorf("quantity %s: %w", name, ferr)
	}

	bindings := make(map[string]interface{}, len(refs))
	for _, ref := range refs {
		dep, ok := r.sheet.quantities[ref]
		if !ok {
			// Left unbound; the evaluator reports it if it is not a constant.
			continue
		}
		if !dep.isFormula {
			bindings[ref] = dep.value
			continue
		}
		v, err := r.resolve(ref, true)
		if err != nil {
			return 0, fmt.Errorf("quantity %s: %w", name, err)
		}
		bindings[ref] = v
	}

	var opts []formula.Option
	if sub {
		opts = append(opts, formula.SubCall())
	}
	e, ferr := formula.New(q.formula, bindings, opts...)
	if ferr != nil {
		return 0, fmt.Errorf("quantity %s: %w", name, ferr)
	}
	v, ferr := e.Evaluate()
	if ferr != nil {
		return 0, fmt.Errorf("quantity %s: %w", name, ferr)
	}

	r.sheet.logger.Debug("evaluated formula",
		slog.String("quantity", name),
		slog.String("formula", e.Expression()),
		slog.Bool("sub_call", sub),
		slog.Float64("result", v),
	)

	r.memo[name] = v
	return v, nil
}
