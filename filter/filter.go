// Package filter compiles expr-lang expressions into predicates over
// pull requests, for client-side narrowing of list results.
package filter

import (
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Filter is a compiled pull request predicate.
type Filter struct {
	expression string
	program    *vm.Program
}

// Compile compiles an expression into an executable filter.
//
// Expressions evaluate against flattened pull request fields: id, title,
// state, author, from, to, draft, locked, plus the raw pr map. Examples:
//
//	state == "OPEN" && author contains "garcia"
//	draft || from startsWith "feature/"
func Compile(expression string) (*Filter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "empty expression",
		}
	}

	program, err := expr.Compile(expression,
		expr.AllowUndefinedVariables(), // pull request fields vary by server
		expr.AsBool(),
	)
	if err != nil {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "failed to compile expression",
			Err:        err,
		}
	}

	return &Filter{expression: expression, program: program}, nil
}

// Expression returns the source expression the filter was compiled from.
func (f *Filter) Expression() string {
	return f.expression
}

// Match evaluates the filter against a single pull request.
func (f *Filter) Match(pr map[string]any) (bool, error) {
	out, err := expr.Run(f.program, environment(pr))
	if err != nil {
		return false, &EvaluationError{Expression: f.expression, Err: err}
	}
	matched, ok := out.(bool)
	if !ok {
		return false, &EvaluationError{Expression: f.expression}
	}
	return matched, nil
}

// environment flattens the fields most filters want into top-level
// variables. The raw map stays reachable under "pr" for everything else.
func environment(pr map[string]any) map[string]any {
	env := map[string]any{
		"pr":     pr,
		"id":     pr["id"],
		"title":  stringField(pr, "title"),
		"state":  stringField(pr, "state"),
		"draft":  boolField(pr, "draft"),
		"locked": boolField(pr, "locked"),
		"from":   refDisplayID(pr, "fromRef"),
		"to":     refDisplayID(pr, "toRef"),
		"author": authorName(pr),
	}
	return env
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func boolField(m map[string]any, key string) bool {
	b, _ := m[key].(bool)
	return b
}

func mapField(m map[string]any, key string) map[string]any {
	child, _ := m[key].(map[string]any)
	return child
}

func refDisplayID(pr map[string]any, key string) string {
	ref := mapField(pr, key)
	if display := stringField(ref, "displayId"); display != "" {
		return display
	}
	return stringField(ref, "id")
}

func authorName(pr map[string]any) string {
	user := mapField(mapField(pr, "author"), "user")
	if display := stringField(user, "displayName"); display != "" {
		return display
	}
	return stringField(user, "name")
}
