package agent

import "fmt"

// Role is the speaker role.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of the transcript sent to the model.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Conversation is the ordered, append-only transcript of a single run.
// It has exactly one writer: the RunStream that owns it.
type Conversation struct {
	messages []Message
}

// NewConversation seeds a transcript with the system prompt and the user task.
func NewConversation(system, task string) *Conversation {
	c := &Conversation{}
	c.Append(RoleSystem, system)
	c.Append(RoleUser, task)
	return c
}

func (c *Conversation) Append(role Role, content string) {
	c.messages = append(c.messages, Message{Role: role, Content: content})
}

// Messages returns a copy of the transcript.
func (c *Conversation) Messages() []Message {
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

func (c *Conversation) Len() int { return len(c.messages) }

// Last returns the most recent message, or false when the transcript is empty.
func (c *Conversation) Last() (Message, bool) {
	if len(c.messages) == 0 {
		return Message{}, false
	}
	return c.messages[len(c.messages)-1], true
}

// toolResultContent formats an executed call as the user message fed back to the model.
func toolResultContent(name, params, result string) string {
	return fmt.Sprintf("Function Executed: %s\nParameters: %s\nResult: %s", name, params, result)
}
