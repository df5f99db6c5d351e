package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/hashicorp/go-multierror"

	"github.com/labtools/formula"
	"github.com/labtools/formula/resolve"
)

// Eval evaluates a single formula.
type Eval struct {
	Expression string            `arg:"" help:"Formula to evaluate."`
	Var        map[string]string `       help:"Bind a variable."                                   placeholder:"NAME=VALUE" short:"v"`
	Vars       string            `       help:"YAML or JSON file of variables."                    type:"existingfile"`
	SubCall    bool              `       help:"Allow variables to rebind pi and e."`
	Decimals   int               `       help:"Number of decimals, or -1 for the shortest form." default:"-1"`
}

// Run executes the eval command.
func (e *Eval) Run(logger *slog.Logger, out io.Writer) error {
	variables := map[string]interface{}{}
	if e.Vars != "" {
		if err := readVariables(e.Vars, variables); err != nil {
			return NewError("read variables", slog.String("file", e.Vars)).Wrap(err)
		}
	}
	for name, value := range e.Var {
		variables[name] = value
	}

	var opts []formula.Option
	if e.SubCall {
		opts = append(opts, formula.SubCall())
	}

	ev, ferr := formula.New(e.Expression, variables, opts...)
	if ferr != nil {
		return NewError("bind variables").Wrap(ferr)
	}

	logger.Debug("evaluating",
		slog.String("expression", ev.Expression()),
		slog.Int("variables", len(variables)),
		slog.Bool("sub_call", e.SubCall),
	)

	v, ferr := ev.Evaluate()
	if ferr != nil {
		return NewError("evaluate").Wrap(sourceError{err: ferr, source: ev.Expression()})
	}

	fmt.Fprintln(out, resolve.FormatResult(v, e.Decimals))
	return nil
}

func readVariables(path string, variables map[string]interface{}) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var file map[string]interface{}
	if err := yaml.NewDecoder(f).Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	for name, value := range file {
		variables[name] = value
	}
	return nil
}

// Refs lists the variables a formula references.
type Refs struct {
	Expression string `arg:"" help:"Formula to inspect."`
}

// Run executes the refs command.
func (r *Refs) Run(out io.Writer) error {
	names, ferr := formula.References(r.Expression)
	if ferr != nil {
		return NewError("parse").Wrap(sourceError{err: ferr, source: formula.NormalizeExpression(r.Expression)})
	}
	for _, name := range names {
		fmt.Fprintln(out, name)
	}
	return nil
}

// Resolve computes the quantities of a sheet.
type Resolve struct {
	Sheet    string   `arg:""      help:"YAML or JSON sheet of quantities."                  type:"existingfile"`
	Names    []string `arg:""      help:"Quantities to resolve, all when omitted."          optional:""`
	Decimals int      `default:"-1" help:"Number of decimals, or -1 for the shortest form."`
}

// Run executes the resolve command.
func (r *Resolve) Run(logger *slog.Logger, out io.Writer) error {
	f, err := os.Open(r.Sheet)
	if err != nil {
		return NewError("open sheet").Wrap(err)
	}
	defer f.Close()

	sheet, err := resolve.Load(f,
		resolve.WithLogger(logger),
		resolve.WithDecimals(r.Decimals),
	)
	if err != nil {
		return NewError("load sheet", slog.String("file", r.Sheet)).Wrap(err)
	}

	if len(r.Names) == 0 {
		values, err := sheet.ResolveAll()
		for _, name := range sheet.Names() {
			if v, ok := values[name]; ok {
				fmt.Fprintf(out, "%s = %s\n", name, sheet.Format(v))
			}
		}
		return r.failed(logger, err, len(sheet.Names()))
	}

	var result *multierror.Error
	for _, name := range r.Names {
		v, err := sheet.Resolve(name)
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		fmt.Fprintf(out, "%s = %s\n", name, sheet.Format(v))
	}
	return r.failed(logger, result.ErrorOrNil(), len(r.Names))
}

// failed logs every resolution failure and summarizes them in one error.
func (r *Resolve) failed(logger *slog.Logger, err error, total int) error {
	var merr *multierror.Error
	if !errors.As(err, &merr) {
		return err
	}
	for _, e := range merr.Errors {
		logger.Error("resolve failed", slog.Any("error", e))
	}
	return NewError(fmt.Sprintf("%d of %d quantities failed", len(merr.Errors), total),
		slog.String("file", r.Sheet),
	).Wrap(err)
}
