package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/inspirepan/agent"
)

var (
	taskStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")). // cyan
			Bold(true)

	thinkingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("5")) // magenta

	toolCallStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("3")). // yellow
			Bold(true)

	toolOutputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("4")) // blue

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("1")). // red
			Bold(true)

	finalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("2")). // green
			Bold(true)
)

func renderEvent(w io.Writer, ev agent.Event) {
	switch ev.Type {
	case agent.EventThinking:
		fmt.Fprintf(w, "%s %s\n", thinkingStyle.Render(fmt.Sprintf("[%d] Thinking:", ev.Turn)), ev.Content)
		if ev.Step != nil && ev.Step.ExecuteFunction {
			fmt.Fprintf(w, "%s %s %s\n", toolCallStyle.Render("Tool:"), ev.Step.FunctionName, ev.Step.FunctionParameters)
			if ev.ToolResult != "" {
				fmt.Fprintln(w, toolOutputStyle.Render(ev.ToolResult))
			}
		}
	case agent.EventFinal:
		fmt.Fprintf(w, "%s %s\n", finalStyle.Render("Final Answer:"), ev.Content)
	}
}
