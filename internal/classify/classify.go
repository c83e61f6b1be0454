// Package classify decides which annotation slots of a function are missing.
package classify

import (
	"slices"

	"github.com/phobologic/pythcheck/internal/model"
)

// Classifier applies a policy to extracted functions.
type Classifier struct {
	ignoreReturn bool
	exempt       []string
}

// New creates a Classifier for policy. A nil ExemptParams falls back to
// model.DefaultExemptParams; an empty non-nil slice exempts nothing.
func New(policy model.Policy) *Classifier {
	exempt := policy.ExemptParams
	if exempt == nil {
		exempt = model.DefaultExemptParams
	}
	return &Classifier{ignoreReturn: policy.IgnoreReturn, exempt: exempt}
}

// Classify returns the violations of fn, parameters in declaration order
// followed by the return slot. file is recorded on each violation.
func (c *Classifier) Classify(file string, fn model.FunctionNode) []model.Violation {
	var violations []model.Violation

	newViolation := func(kind model.ViolationKind, pos model.Position) model.Violation {
		return model.Violation{
			File:        file,
			Function:    fn.Name,
			FunctionPos: fn.Pos,
			Pos:         pos,
			Kind:        kind,
		}
	}

	for i, p := range fn.Params {
		if p.Kind == model.Separator || p.Annotated() {
			continue
		}
		if i == 0 && c.exemptReceiver(fn, p) {
			continue
		}
		v := newViolation(model.MissingParameterHint, p.Pos)
		v.Param = p.DisplayName()
		violations = append(violations, v)
	}

	if !c.ignoreReturn && !fn.HasReturnAnnotation() {
		violations = append(violations, newViolation(model.MissingReturnHint, fn.Pos))
	}

	return violations
}

// exemptReceiver reports whether p, the first parameter of fn, is named like
// an implicit receiver. The name decides, wherever fn is defined; only
// @staticmethod opts out.
func (c *Classifier) exemptReceiver(fn model.FunctionNode, p model.ParameterNode) bool {
	if fn.HasDecorator("staticmethod") {
		return false
	}
	if p.Kind != model.Positional || p.HasDefault {
		return false
	}
	return slices.Contains(c.exempt, p.Name)
}

// File classifies every function in fns and returns the combined
// violations in function order.
func (c *Classifier) File(file string, fns []model.FunctionNode) []model.Violation {
	var violations []model.Violation
	for _, fn := range fns {
		violations = append(violations, c.Classify(file, fn)...)
	}
	return violations
}
