package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/inspirepan/agent"
)

// toolEnv is the run dependency handed to tools that declare a ctx parameter.
type toolEnv struct {
	Location *time.Location
	Now      func() time.Time
}

func (e *toolEnv) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func demoRegistry() (*agent.Registry, error) {
	return agent.NewRegistry(addTool(), multiplyTool(), wordCountTool(), currentTimeTool())
}

func addTool() agent.Tool {
	return agent.NewTool(agent.ToolSpec{
		Name: "add",
		Doc:  "Add two integers and return the sum.",
		Params: []agent.Param{
			{Name: "a", Type: "int", Required: true},
			{Name: "b", Type: "int", Required: true},
		},
		Returns: "int",
	}, func(_ context.Context, args agent.Args, _ any) (any, error) {
		a, err := args.Int("a")
		if err != nil {
			return nil, err
		}
		b, err := args.Int("b")
		if err != nil {
			return nil, err
		}
		return a + b, nil
	})
}

func multiplyTool() agent.Tool {
	return agent.NewTool(agent.ToolSpec{
		Name: "multiply",
		Doc:  "Multiply two numbers.",
		Params: []agent.Param{
			{Name: "a", Type: "float", Required: true},
			{Name: "b", Type: "float", Default: 1.0},
		},
		Returns: "float",
	}, func(_ context.Context, args agent.Args, _ any) (any, error) {
		a, err := args.Float("a")
		if err != nil {
			return nil, err
		}
		b, err := args.Float("b")
		if err != nil {
			return nil, err
		}
		return a * b, nil
	})
}

func wordCountTool() agent.Tool {
	return agent.NewTool(agent.ToolSpec{
		Name:    "word_count",
		Doc:     "Count the whitespace-separated words in text.",
		Params:  []agent.Param{{Name: "text", Type: "str", Required: true}},
		Returns: "int",
	}, func(_ context.Context, args agent.Args, _ any) (any, error) {
		text, err := args.String("text")
		if err != nil {
			return nil, err
		}
		return len(strings.Fields(text)), nil
	})
}

func currentTimeTool() agent.Tool {
	return agent.NewTool(agent.ToolSpec{
		Name:    "current_time",
		Doc:     "Return the current date and time in the configured time zone.",
		Params:  []agent.Param{{Name: "ctx", Type: "toolEnv", Required: true}},
		Returns: "str",
	}, func(_ context.Context, _ agent.Args, dep any) (any, error) {
		env, ok := dep.(*toolEnv)
		if !ok || env == nil {
			return nil, fmt.Errorf("current_time: unexpected dependency %T", dep)
		}
		loc := env.Location
		if loc == nil {
			loc = time.Local
		}
		return env.now().In(loc).Format(time.RFC1123), nil
	})
}

func toolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "Print the tool catalog sent to the model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := demoRegistry()
			if err != nil {
				return err
			}
			catalog, err := reg.Describe()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), catalog)
			return nil
		},
	}
}
