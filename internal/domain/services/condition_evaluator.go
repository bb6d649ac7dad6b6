// Package services contains domain services that encapsulate business logic
// spanning multiple entities. These services are stateless apart from
// caches and can be shared across goroutines.
package services

import (
	"fmt"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

const (
	maxConditionLength = 1000
	maxConditionNodes  = 200
)

// ConditionEnv is the data visible to `when` expressions on hook ops.
type ConditionEnv struct {
	Env      map[string]string `expr:"env"`
	Platform string            `expr:"platform"` // linux, osx or windows
	Arch     string            `expr:"arch"`     // x86_64, arm64, ...
	Name     string            `expr:"name"`
	Version  string            `expr:"version"`
	Root     string            `expr:"root"`
	Variant  []string          `expr:"variant"` // package names of the selected variant
}

// ConditionEvaluator compiles and evaluates `when` expressions.
// It caches compiled programs to avoid redundant compilation overhead.
type ConditionEvaluator struct {
	programCache map[string]*vm.Program
	cacheMu      sync.RWMutex
}

// NewConditionEvaluator creates an evaluator with an empty cache.
func NewConditionEvaluator() *ConditionEvaluator {
	return &ConditionEvaluator{
		programCache: make(map[string]*vm.Program),
	}
}

// Check compiles an expression without running it. Used at load time.
func (c *ConditionEvaluator) Check(expression string) error {
	_, err := c.getOrCompile(expression)
	return err
}

// Evaluate runs an expression against env. An empty expression is true.
func (c *ConditionEvaluator) Evaluate(expression string, env ConditionEnv) (bool, error) {
	if expression == "" {
		return true, nil
	}

	program, err := c.getOrCompile(expression)
	if err != nil {
		return false, err
	}

	output, err := expr.Run(program, env)
	if err != nil {
		return false, fmt.Errorf("evaluating %q: %w", expression, err)
	}

	result, ok := output.(bool)
	if !ok {
		return false, fmt.Errorf("condition %q returned %T, expected bool", expression, output)
	}
	return result, nil
}

// getOrCompile retrieves a cached program or compiles and caches a new one.
func (c *ConditionEvaluator) getOrCompile(expression string) (*vm.Program, error) {
	if len(expression) > maxConditionLength {
		return nil, fmt.Errorf("condition exceeds %d characters", maxConditionLength)
	}

	c.cacheMu.RLock()
	program, found := c.programCache[expression]
	c.cacheMu.RUnlock()
	if found {
		return program, nil
	}

	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()

	if program, found := c.programCache[expression]; found {
		return program, nil
	}

	program, err := expr.Compile(expression,
		expr.Env(ConditionEnv{}),
		expr.AsBool(),
		expr.MaxNodes(maxConditionNodes),
	)
	if err != nil {
		return nil, fmt.Errorf("compiling %q: %w", expression, err)
	}

	c.programCache[expression] = program
	return program, nil
}
