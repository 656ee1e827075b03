package rules

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies why a mutation was rejected.
type Kind string

const (
	InvalidReference         Kind = "invalid_reference"
	SelfDependency           Kind = "self_dependency"
	CircularDependency       Kind = "circular_dependency"
	DependenciesUnmet        Kind = "dependencies_unmet"
	CompletedDependentsExist Kind = "completed_dependents_exist"
	HasDependents            Kind = "has_dependents"
)

// Sentinels for errors.Is. Every *Error unwraps to exactly one of them.
var (
	ErrInvalidReference         = errors.New("invalid task reference")
	ErrSelfDependency           = errors.New("task cannot depend on itself")
	ErrCircularDependency       = errors.New("dependency would create a cycle")
	ErrDependenciesUnmet        = errors.New("dependencies are not complete")
	ErrCompletedDependentsExist = errors.New("completed tasks depend on this task")
	ErrHasDependents            = errors.New("other tasks depend on this task")
)

var sentinels = map[Kind]error{
	InvalidReference:         ErrInvalidReference,
	SelfDependency:           ErrSelfDependency,
	CircularDependency:       ErrCircularDependency,
	DependenciesUnmet:        ErrDependenciesUnmet,
	CompletedDependentsExist: ErrCompletedDependentsExist,
	HasDependents:            ErrHasDependents,
}

// Error is a rejected mutation. TaskID is the task the operation targeted;
// Related lists the tasks that caused the rejection (the offending
// prerequisite, the incomplete dependencies, the dependents).
type Error struct {
	Kind    Kind
	TaskID  int64
	Related []int64
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("task %d: %s", e.TaskID, sentinels[e.Kind])
	if len(e.Related) > 0 {
		ids := make([]string, len(e.Related))
		for i, id := range e.Related {
			ids[i] = fmt.Sprint(id)
		}
		msg += " (" + strings.Join(ids, ", ") + ")"
	}
	return msg
}

func (e *Error) Unwrap() error {
	return sentinels[e.Kind]
}

func reject(kind Kind, taskID int64, related ...int64) *Error {
	return &Error{Kind: kind, TaskID: taskID, Related: related}
}

// KindOf returns the rejection kind of err, or "" if err is not a rule error.
func KindOf(err error) Kind {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind
	}
	return ""
}
