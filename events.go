package agent

// EventType represents the kind of a run event.
type EventType string

const (
	// EventThinking is emitted once per turn with the decoded thought.
	EventThinking EventType = "thinking"
	// EventFinal carries the final answer and ends the run.
	EventFinal EventType = "final"
)

// Event is an incremental update produced by RunStream.
type Event struct {
	Type    EventType
	Content string
	Turn    int

	// Step is the decoded record behind a thinking event.
	Step *Step
	// ToolResult is the formatted tool output when the turn executed a function.
	ToolResult string
}
