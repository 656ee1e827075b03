// Package render draws projects and task graphs for the terminal.
package render

import "github.com/fatih/color"

// Sprint color functions for building styled strings.
var (
	Bold      = color.New(color.Bold).SprintFunc()
	Dim       = color.New(color.Faint).SprintFunc()
	Green     = color.New(color.FgGreen).SprintFunc()
	Red       = color.New(color.FgRed).SprintFunc()
	Yellow    = color.New(color.FgYellow).SprintFunc()
	Cyan      = color.New(color.FgCyan).SprintFunc()
	BoldGreen = color.New(color.Bold, color.FgGreen).SprintFunc()
	BoldRed   = color.New(color.Bold, color.FgRed).SprintFunc()
)

// Task states as shown in listings.
const (
	StateDone    = "done"
	StateReady   = "ready"
	StateBlocked = "blocked"
)

func stateLabel(state string) string {
	switch state {
	case StateDone:
		return Green("[x]")
	case StateReady:
		return Yellow("[ ]")
	default:
		return Red("[-]")
	}
}
