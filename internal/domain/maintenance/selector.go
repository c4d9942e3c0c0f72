package maintenance

import (
	"fmt"

	"github.com/google/cel-go/cel"

	"clinicore/internal/core/apperror"
	"clinicore/internal/domain/records"
)

// rootFilterEnv declares the visit fields available to filter expressions.
func rootFilterEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("department", cel.StringType),
		cel.Variable("registration_number", cel.StringType),
		cel.Variable("day_serial", cel.IntType),
		cel.Variable("booking_date", cel.TimestampType),
	)
}

// RootFilter is a compiled CEL predicate over candidate root visits.
// Example: `department == "OPD" && day_serial > 10`.
type RootFilter struct {
	prg cel.Program
}

// CompileRootFilter compiles expr into a reusable predicate.
// Compilation happens before any transaction opens, so a bad expression
// never leaves partial state.
func CompileRootFilter(expr string) (*RootFilter, error) {
	env, err := rootFilterEnv()
	if err != nil {
		return nil, fmt.Errorf("build filter env: %w", err)
	}

	ast, iss := env.Compile(expr)
	if iss != nil && iss.Err() != nil {
		return nil, apperror.NewValidation("invalid filter expression").
			WithDetail("expression", expr).
			WithDetail("error", iss.Err().Error())
	}

	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, apperror.NewValidation("filter expression must evaluate to a boolean").
			WithDetail("expression", expr).
			WithDetail("type", ast.OutputType().String())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("build filter program: %w", err)
	}

	return &RootFilter{prg: prg}, nil
}

// Match evaluates the predicate for one visit.
func (f *RootFilter) Match(v records.Visit) (bool, error) {
	out, _, err := f.prg.Eval(map[string]any{
		"department":          v.Department,
		"registration_number": v.RegistrationNumber,
		"day_serial":          v.DaySerial,
		"booking_date":        v.BookingDate,
	})
	if err != nil {
		return false, fmt.Errorf("evaluate filter: %w", err)
	}

	matched, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("filter returned %T, expected bool", out.Value())
	}
	return matched, nil
}

// applyFilter returns the subset of visits matching the optional filter.
func applyFilter(f *RootFilter, visits []records.Visit) ([]records.Visit, error) {
	if f == nil {
		return visits, nil
	}
	matched := make([]records.Visit, 0, len(visits))
	for _, v := range visits {
		ok, err := f.Match(v)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, v)
		}
	}
	return matched, nil
}
