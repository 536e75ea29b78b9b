package filter

import "fmt"

// CompilationError indicates an expression failed to compile.
type CompilationError struct {
	Expression string
	Reason     string
	Err        error
}

// Error implements the error interface
func (e *CompilationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("filter %q: %s: %v", e.Expression, e.Reason, e.Err)
	}
	return fmt.Sprintf("filter %q: %s", e.Expression, e.Reason)
}

// Unwrap returns the underlying compiler error, if any.
func (e *CompilationError) Unwrap() error {
	return e.Err
}

// EvaluationError indicates a compiled filter failed at run time or
// produced a non-boolean result.
type EvaluationError struct {
	Expression string
	Err        error
}

// Error implements the error interface
func (e *EvaluationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("filter %q: evaluation failed: %v", e.Expression, e.Err)
	}
	return fmt.Sprintf("filter %q: expression did not evaluate to a boolean", e.Expression)
}

// Unwrap returns the underlying evaluation error, if any.
func (e *EvaluationError) Unwrap() error {
	return e.Err
}
