package agent

import (
	"context"
	"fmt"
	"strings"
)

// DefaultTemplate is the instruction block that precedes the tool catalog.
const DefaultTemplate = `You are an AI assistant equipped with a set of programmable tools.
Your job is to help users by methodically breaking down each request into discrete steps, invoking the appropriate tools to handle those steps, and then composing the results into one clear final response.

Follow this process for every user query:

1. **Comprehend & Plan**
   - Read the user's request carefully.
   - Identify the main goal and any sub-goals or dependencies.
   - Outline a short step-by-step plan listing each sub-task you will perform.

2. **Tool Selection & Execution**
   - For each sub-task, determine which of the available tools is best suited.
   - Invoke the tool with precisely formatted inputs: set execute_function to true, function_name to the tool name and function_parameters to a JSON object encoded as a string.
   - Wait for the tool's output before moving on.

3. **Integration & Finalization**
   - Once all sub-tasks are solved, integrate the intermediate results.
   - Set execute_function to false and put a unified, user-ready answer in final_answer.
   - Present only this final answer to the user, without your internal plan or raw tool outputs.

**Additional Guidelines**
- Always think step-by-step and don't skip planning.
- Use tools strictly for what they're designed to do.
- If you already know the answer, give it directly.
- Keep your final answer concise, accurate, and directly responsive to the user's original request.

Here are the available tools:
`

// Contributor adds a dynamic fragment to the system prompt.
type Contributor struct {
	Name string
	// RequiresContext passes the run dependency to Func; otherwise Func gets nil.
	RequiresContext bool
	Func            func(ctx context.Context, dep any) (string, error)
}

// StaticInstructions returns a contributor that appends fixed caller instructions.
func StaticInstructions(text string) Contributor {
	return Contributor{
		Name: "instructions",
		Func: func(context.Context, any) (string, error) {
			if strings.TrimSpace(text) == "" {
				return "", nil
			}
			return "Your Instructions:\n" + text, nil
		},
	}
}

// AssemblePrompt concatenates the template, the tool catalog and the output of
// every contributor, separated by blank lines. Empty fragments are skipped.
func AssemblePrompt(ctx context.Context, template string, reg *Registry, contributors []Contributor, dep any) (string, error) {
	if reg == nil {
		return "", ErrNoRegistry
	}
	catalog, err := reg.Describe()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(strings.TrimRight(template, "\n"))
	b.WriteString("\n")
	b.WriteString(catalog)

	for _, c := range contributors {
		if c.Func == nil {
			continue
		}
		var injected any
		if c.RequiresContext {
			injected = dep
		}
		text, err := c.Func(ctx, injected)
		if err != nil {
			return "", fmt.Errorf("agent: prompt contributor %q: %w", c.Name, err)
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		b.WriteString("\n\n")
		b.WriteString(text)
	}
	return b.String(), nil
}
