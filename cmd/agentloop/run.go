package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/inspirepan/agent"
)

func runCmd(root *rootFlags) *cobra.Command {
	var (
		temperature  float64
		maxTurns     int
		instructions string
		debugPath    string
	)
	cmd := &cobra.Command{
		Use:   "run <task>",
		Short: "Run a task until the model gives a final answer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, root)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("temperature") {
				cfg.Temperature = temperature
			}
			if cmd.Flags().Changed("max-turns") {
				cfg.MaxTurns = maxTurns
			}
			if cmd.Flags().Changed("instructions") {
				cfg.Instructions = instructions
			}
			if cmd.Flags().Changed("debug") {
				cfg.DebugPath = debugPath
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			provider, err := newProvider(cfg)
			if err != nil {
				return err
			}
			reg, err := demoRegistry()
			if err != nil {
				return err
			}
			loc, err := cfg.Location()
			if err != nil {
				return err
			}

			logger := newLogger(cfg)
			reg.SetLogger(logger)

			opts := []agent.Option{
				agent.WithTemperature(cfg.Temperature),
				agent.WithMaxTurns(cfg.MaxTurns),
				agent.WithLogger(logger),
			}
			if cfg.Instructions != "" {
				opts = append(opts, agent.WithInstructions(cfg.Instructions))
			}
			a, err := agent.New(provider, reg, opts...)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			task := strings.Join(args, " ")
			_, err = runTask(ctx, cmd.OutOrStdout(), a, task, &toolEnv{Location: loc})
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), errorStyle.Render("Error: "+err.Error()))
			}
			return err
		},
	}
	cmd.Flags().Float64Var(&temperature, "temperature", 0, "sampling temperature")
	cmd.Flags().IntVar(&maxTurns, "max-turns", 0, "stop after this many model calls (0 = unbounded)")
	cmd.Flags().StringVar(&instructions, "instructions", "", "extra instructions appended to the system prompt")
	cmd.Flags().StringVar(&debugPath, "debug", "", "write provider requests and responses as JSONL to this file")
	return cmd
}

// runTask streams a run to out and returns the final answer.
func runTask(ctx context.Context, out io.Writer, a *agent.Agent, task string, env *toolEnv) (string, error) {
	fmt.Fprintln(out, taskStyle.Render("Task: ")+task)

	stream, err := a.Stream(ctx, task, env)
	if err != nil {
		return "", err
	}
	for {
		ev, err := stream.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
		renderEvent(out, ev)
	}
	return stream.Result()
}
