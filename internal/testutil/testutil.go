// Package testutil provides common testing utilities for loop and provider tests.
package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/inspirepan/agent"
)

const DefaultTimeout = 60 * time.Second

// SkipIfNoEnv skips the test if the environment variable is not set.
func SkipIfNoEnv(t *testing.T, envVar string) {
	t.Helper()
	if os.Getenv(envVar) == "" {
		t.Skipf("skipping: %s not set", envVar)
	}
}

// Response is one scripted model reply.
type Response struct {
	Raw string
	Err error
}

// Reply scripts a raw text reply.
func Reply(raw string) Response { return Response{Raw: raw} }

// Fail scripts a transport failure.
func Fail(err error) Response { return Response{Err: err} }

// StepReply scripts a reply encoded from a step.
func StepReply(step agent.Step) Response {
	data, err := json.Marshal(step)
	if err != nil {
		panic(err)
	}
	return Response{Raw: string(data)}
}

// ScriptedProvider replays canned replies in order and records every request.
type ScriptedProvider struct {
	mu        sync.Mutex
	index     int
	responses []Response
	requests  []agent.CompletionRequest
}

func NewScriptedProvider(responses ...Response) *ScriptedProvider {
	cloned := make([]Response, len(responses))
	copy(cloned, responses)
	return &ScriptedProvider{responses: cloned}
}

var _ agent.Provider = (*ScriptedProvider)(nil)

func (p *ScriptedProvider) Complete(_ context.Context, req agent.CompletionRequest) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.requests = append(p.requests, req)
	if p.index >= len(p.responses) {
		return "", fmt.Errorf("script exhausted at call %d", p.index+1)
	}
	current := p.responses[p.index]
	p.index++
	return current.Raw, current.Err
}

// Requests returns the recorded requests.
func (p *ScriptedProvider) Requests() []agent.CompletionRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]agent.CompletionRequest, len(p.requests))
	copy(out, p.requests)
	return out
}

// Calls returns how many replies were consumed.
func (p *ScriptedProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.index
}

// AddTool returns the two-integer adder used across tests.
func AddTool() agent.Tool {
	return agent.NewTool(agent.ToolSpec{
		Name: "add",
		Doc:  "Add two integers",
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

// TestFirstStep sends a question with the add tool registered and checks that
// the live provider answers with a decodable first step.
func TestFirstStep(t *testing.T, provider agent.Provider) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), DefaultTimeout)
	defer cancel()

	reg, err := agent.NewRegistry(AddTool())
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}
	system, err := agent.AssemblePrompt(ctx, agent.DefaultTemplate, reg, nil, nil)
	if err != nil {
		t.Fatalf("AssemblePrompt failed: %v", err)
	}
	conv := agent.NewConversation(system, "What is 123 + 456? Use the add tool.")

	raw, err := provider.Complete(ctx, agent.CompletionRequest{Messages: conv.Messages(), Shape: agent.ShapeFirst})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	step, err := agent.DecodeStep(raw, agent.ShapeFirst)
	if err != nil {
		t.Fatalf("DecodeStep failed: %v\nraw: %s", err, raw)
	}
	if step.ExecuteFunction && step.FunctionName != "add" {
		t.Errorf("expected function 'add', got %q", step.FunctionName)
	}
	t.Logf("thought: %s", step.Thought)
}

// TestRun runs a full task against a live provider.
func TestRun(t *testing.T, provider agent.Provider) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), DefaultTimeout)
	defer cancel()

	reg, err := agent.NewRegistry(AddTool())
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}
	a, err := agent.New(provider, reg, agent.WithMaxTurns(8))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	answer, err := a.Run(ctx, "What is 123 + 456? Use the add tool.", nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	t.Logf("answer: %s", answer)
}
