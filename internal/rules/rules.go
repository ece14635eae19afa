// Package rules hosts the pluggable time-entry validation hook. A rule is a
// narrow predicate over a fixed input; the engine enforces a wall-clock
// budget and fails closed on timeout, panic or error.
package rules

import (
	"context"
	"fmt"
	"time"

	"github.com/schnell18/titra/internal/domain"
	"github.com/schnell18/titra/internal/errors"
)

// Input is the fixed contract a rule is evaluated against.
type Input struct {
	User    domain.Profile
	Project domain.Project
	Task    string
	State   domain.State
	Date    time.Time
	Hours   float64
}

// Rule vetoes a proposed time entry by returning false or an error.
type Rule interface {
	Evaluate(ctx context.Context, input Input) (bool, error)
}

// RuleFunc adapts a plain function to the Rule interface.
type RuleFunc func(ctx context.Context, input Input) (bool, error)

// Evaluate implements the Rule interface.
func (f RuleFunc) Evaluate(ctx context.Context, input Input) (bool, error) {
	return f(ctx, input)
}

// AllowAll is the default rule when none is configured.
var AllowAll = RuleFunc(func(context.Context, Input) (bool, error) {
	return true, nil
})

// MaxHoursPerEntry vetoes entries above a fixed hour count. It is the
// built-in rule selectable through configuration.
func MaxHoursPerEntry(max float64) Rule {
	return RuleFunc(func(_ context.Context, input Input) (bool, error) {
		if input.Hours > max {
			return false, fmt.Errorf("hours %.2f exceed the maximum of %.2f per entry", input.Hours, max)
		}
		return true, nil
	})
}

// Engine runs the configured rule with an enforced execution budget.
type Engine struct {
	rule    Rule
	timeout time.Duration
}

// NewEngine creates a new Engine instance. A nil rule allows everything; a
// non-positive timeout falls back to one second, matching the budget the
// hook contract fixes.
func NewEngine(rule Rule, timeout time.Duration) *Engine {
	if rule == nil {
		rule = AllowAll
	}
	if timeout <= 0 {
		timeout = time.Second
	}
	return &Engine{rule: rule, timeout: timeout}
}

type ruleResult struct {
	ok  bool
	err error
}

// Check evaluates the rule against the input. Any veto, error, panic or
// budget overrun yields a rule-violation error; the operation must not
// proceed in any of those cases.
func (e *Engine) Check(ctx context.Context, input Input) error {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	results := make(chan ruleResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				results <- ruleResult{err: fmt.Errorf("rule panicked: %v", r)}
			}
		}()
		ok, err := e.rule.Evaluate(ctx, input)
		results <- ruleResult{ok: ok, err: err}
	}()

	select {
	case res := <-results:
		if res.err != nil {
			return errors.NewRuleViolationError(res.err.Error(), res.err)
		}
		if !res.ok {
			return errors.NewRuleViolationError("time entry rule failed", nil)
		}
		return nil
	case <-ctx.Done():
		return errors.NewRuleViolationError("time entry rule timed out", ctx.Err())
	}
}
