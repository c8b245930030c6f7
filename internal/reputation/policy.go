// Package reputation holds the completion-delta policy: how much a user's
// reputation moves when they complete a task. The formula is a configurable
// expression rather than a hardcoded constant, evaluated with expr-lang.
package reputation

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// DefaultExpression awards a fixed +10 per completed task.
const DefaultExpression = "10"

// policyEnv is the expression environment. Expressions reference the task's
// reward via the `reward` variable.
type policyEnv struct {
	Reward int64 `expr:"reward"`
}

// Policy evaluates the completion reputation delta for a task.
// Construct with NewPolicy; the zero value is not usable.
type Policy struct {
	expression string
	program    *vm.Program
}

// NewPolicy compiles a completion-delta expression. An empty expression
// selects DefaultExpression. The expression must type-check as an integer
// over the policy environment; compile errors surface here, at configuration
// time, never mid-operation.
func NewPolicy(expression string) (*Policy, error) {
	if expression == "" {
		expression = DefaultExpression
	}

	program, err := expr.Compile(expression, expr.Env(policyEnv{}), expr.AsInt64())
	if err != nil {
		return nil, fmt.Errorf("failed to compile reputation delta expression %q: %w", expression, err)
	}

	return &Policy{
		expression: expression,
		program:    program,
	}, nil
}

// Expression returns the source expression this policy was compiled from.
func (p *Policy) Expression() string {
	return p.expression
}

// CompletionDelta evaluates the reputation delta for completing a task with
// the given reward. Clamping to the valid reputation range is the registry's
// job, not the policy's.
func (p *Policy) CompletionDelta(reward uint64) (int64, error) {
	out, err := expr.Run(p.program, policyEnv{Reward: int64(reward)})
	if err != nil {
		return 0, fmt.Errorf("failed to evaluate reputation delta for reward %d: %w", reward, err)
	}

	delta, ok := out.(int64)
	if !ok {
		return 0, fmt.Errorf("reputation delta expression returned %T, expected integer", out)
	}

	return delta, nil
}
