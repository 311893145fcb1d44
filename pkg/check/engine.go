package check

import (
	"fmt"
	"sync"

	"digital.vasic.gwt/pkg/gwt"
	"digital.vasic.gwt/pkg/prereq"
)

// Engine evaluates check definitions.
type Engine interface {
	// Evaluate checks value against def. It returns nil when
	// the check passes and a *Failure otherwise.
	Evaluate(def Definition, value any) error

	// Register adds a custom evaluator. Returns an error if the
	// type is already registered.
	Register(checkType string, evaluator Evaluator) error
}

// DefaultEngine is the standard Engine implementation. It is
// safe for concurrent use.
type DefaultEngine struct {
	mu         sync.RWMutex
	evaluators map[string]Evaluator
}

// NewEngine creates a DefaultEngine with the built-in evaluators
// registered.
func NewEngine() *DefaultEngine {
	e := &DefaultEngine{
		evaluators: make(map[string]Evaluator),
	}
	e.registerDefaults()
	return e
}

func (e *DefaultEngine) registerDefaults() {
	e.evaluators["equals"] = evaluateEquals
	e.evaluators["not_empty"] = evaluateNotEmpty
	e.evaluators["contains"] = evaluateContains
	e.evaluators["contains_any"] = evaluateContainsAny
	e.evaluators["min_length"] = evaluateMinLength
	e.evaluators["min_count"] = evaluateMinCount
	e.evaluators["exact_count"] = evaluateExactCount
	e.evaluators["regex"] = evaluateRegex
	e.evaluators["one_of"] = evaluateOneOf
	e.evaluators["no_duplicates"] = evaluateNoDuplicates
}

// Register adds a custom evaluator for the given check type.
func (e *DefaultEngine) Register(
	checkType string,
	evaluator Evaluator,
) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.evaluators[checkType]; exists {
		return fmt.Errorf(
			"check type already registered: %s", checkType,
		)
	}
	e.evaluators[checkType] = evaluator
	return nil
}

// HasEvaluator returns true if the check type is registered.
func (e *DefaultEngine) HasEvaluator(checkType string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, exists := e.evaluators[checkType]
	return exists
}

// Evaluate runs a single check against value.
func (e *DefaultEngine) Evaluate(def Definition, value any) error {
	e.mu.RLock()
	evaluator, exists := e.evaluators[def.Type]
	e.mu.RUnlock()

	if !exists {
		return &Failure{
			Type:    def.Type,
			Actual:  value,
			Reason:  fmt.Sprintf("unknown check type: %s", def.Type),
			Message: def.Message,
		}
	}

	passed, reason := evaluator(def, value)
	if passed {
		return nil
	}

	expected := def.Value
	if expected == nil && len(def.Values) > 0 {
		expected = def.Values
	}
	return &Failure{
		Type:     def.Type,
		Expected: expected,
		Actual:   value,
		Reason:   reason,
		Message:  def.Message,
	}
}

// Returns adapts check definitions into a ThenReturns check. The
// returned value must satisfy every definition; the first
// failure is reported.
func Returns(e Engine, defs ...Definition) gwt.ReturnCheck {
	return func(_ prereq.Tuple, v any) error {
		for _, d := range defs {
			if err := e.Evaluate(d, v); err != nil {
				return err
			}
		}
		return nil
	}
}

// Throws adapts check definitions into a ThenThrows check. The
// definitions are evaluated against the error message.
func Throws(e Engine, defs ...Definition) gwt.ThrowCheck {
	return func(_ prereq.Tuple, err error) error {
		msg := ""
		if err != nil {
			msg = err.Error()
		}
		for _, d := range defs {
			if ferr := e.Evaluate(d, msg); ferr != nil {
				return ferr
			}
		}
		return nil
	}
}
