// Package plan loads project plans: a project and its tasks, with
// dependencies named by task key, validated against an embedded JSON schema.
package plan

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema.json
var schemaJSON []byte

const schemaURL = "plan.schema.json"

// Plan is a project and the tasks to create in it.
type Plan struct {
	Project Project `json:"project"`
	Tasks   []Task  `json:"tasks"`
}

// Project describes the project a plan creates. Deadline is a YYYY-MM-DD date.
type Project struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Deadline    string `json:"deadline,omitempty"`
}

// Task is one planned task. DependsOn lists keys of other tasks in the plan.
type Task struct {
	Key                string   `json:"key"`
	Title              string   `json:"title"`
	Description        string   `json:"description,omitempty"`
	Importance         string   `json:"importance,omitempty"`
	StartDate          string   `json:"start_date,omitempty"`
	ExpectedCompletion string   `json:"expected_completion_date,omitempty"`
	Completed          bool     `json:"completed,omitempty"`
	DependsOn          []string `json:"depends_on,omitempty"`
}

// Problem is one schema violation.
type Problem struct {
	Path    string
	Message string
}

// ValidationError lists every schema violation in a plan.
type ValidationError struct {
	Problems []Problem
}

func (e *ValidationError) Error() string {
	lines := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		path := p.Path
		if path == "" {
			path = "(root)"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", path, p.Message))
	}
	return "invalid plan:\n  " + strings.Join(lines, "\n  ")
}

// ErrPlanCycle is returned when task keys depend on each other in a loop.
var ErrPlanCycle = errors.New("plan dependencies form a cycle")

var schema = mustCompile()

func mustCompile() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
		panic(fmt.Sprintf("plan schema: %v", err))
	}
	return compiler.MustCompile(schemaURL)
}

// Parse validates data against the plan schema and checks that every
// dependency names a task in the plan.
func Parse(data []byte) (*Plan, error) {
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse plan: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, toValidationError(err)
	}

	var p Plan
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode plan: %w", err)
	}

	keys := make(map[string]bool, len(p.Tasks))
	for _, t := range p.Tasks {
		if keys[t.Key] {
			return nil, fmt.Errorf("duplicate task key %q", t.Key)
		}
		keys[t.Key] = true
	}
	for _, t := range p.Tasks {
		for _, dep := range t.DependsOn {
			if dep == t.Key {
				return nil, fmt.Errorf("task %q depends on itself", t.Key)
			}
			if !keys[dep] {
				return nil, fmt.Errorf("task %q depends on unknown key %q", t.Key, dep)
			}
		}
	}
	return &p, nil
}

func toValidationError(err error) error {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return err
	}
	out := &ValidationError{}
	collect(ve, out)
	if len(out.Problems) == 0 {
		out.Problems = append(out.Problems, Problem{Path: ve.InstanceLocation, Message: ve.Message})
	}
	return out
}

func collect(ve *jsonschema.ValidationError, out *ValidationError) {
	if len(ve.Causes) == 0 {
		out.Problems = append(out.Problems, Problem{Path: ve.InstanceLocation, Message: ve.Message})
		return
	}
	for _, cause := range ve.Causes {
		collect(cause, out)
	}
}

// Order returns the tasks so that every task comes after the tasks it
// depends on. Ties keep file order.
func (p *Plan) Order() ([]Task, error) {
	pending := make([]int, len(p.Tasks))
	dependents := make(map[string][]int)
	for i, t := range p.Tasks {
		pending[i] = len(t.DependsOn)
		for _, dep := range t.DependsOn {
			dependents[dep] = append(dependents[dep], i)
		}
	}

	var queue []int
	for i, n := range pending {
		if n == 0 {
			queue = append(queue, i)
		}
	}

	ordered := make([]Task, 0, len(p.Tasks))
	for len(queue) > 0 {
		sort.Ints(queue)
		i := queue[0]
		queue = queue[1:]
		ordered = append(ordered, p.Tasks[i])
		for _, j := range dependents[p.Tasks[i].Key] {
			pending[j]--
			if pending[j] == 0 {
				queue = append(queue, j)
			}
		}
	}

	if len(ordered) != len(p.Tasks) {
		var stuck []string
		for i, n := range pending {
			if n > 0 {
				stuck = append(stuck, p.Tasks[i].Key)
			}
		}
		return nil, fmt.Errorf("%w: %s", ErrPlanCycle, strings.Join(stuck, ", "))
	}
	return ordered, nil
}

// ParseDate reads a YYYY-MM-DD plan date. Empty yields nil.
func ParseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return &t, nil
}
