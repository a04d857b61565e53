package agent_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/inspirepan/agent"
	"github.com/inspirepan/agent/internal/testutil"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func firstCall(thought, name, params string) testutil.Response {
	q := "task"
	return testutil.StepReply(agent.Step{Question: &q, Thought: thought, ExecuteFunction: true, FunctionName: name, FunctionParameters: params})
}

func firstAnswer(thought, answer string) testutil.Response {
	q := "task"
	return testutil.StepReply(agent.Step{Question: &q, Thought: thought, FinalAnswer: answer})
}

func nextCall(thought, name, params string) testutil.Response {
	return testutil.StepReply(agent.Step{Thought: thought, ExecuteFunction: true, FunctionName: name, FunctionParameters: params})
}

func nextAnswer(thought, answer string) testutil.Response {
	return testutil.StepReply(agent.Step{Thought: thought, FinalAnswer: answer})
}

func newAgent(t *testing.T, p agent.Provider, opts ...agent.Option) *agent.Agent {
	t.Helper()
	reg, err := agent.NewRegistry(testutil.AddTool())
	require.NoError(t, err)
	a, err := agent.New(p, reg, append([]agent.Option{agent.WithLogger(quietLogger())}, opts...)...)
	require.NoError(t, err)
	return a
}

func TestNew_RequiresProvider(t *testing.T) {
	_, err := agent.New(nil, nil)
	require.ErrorIs(t, err, agent.ErrNoProvider)

	a, err := agent.New(testutil.NewScriptedProvider(), nil)
	require.NoError(t, err)
	require.Equal(t, 0, a.Registry().Len())
}

func TestRun_ImmediateAnswer(t *testing.T) {
	p := testutil.NewScriptedProvider(firstAnswer("I know this", "42"))
	a := newAgent(t, p)

	answer, err := a.Run(context.Background(), "What is 6*7?", nil)
	require.NoError(t, err)
	require.Equal(t, "42", answer)
	require.Equal(t, 1, p.Calls())

	req := p.Requests()[0]
	require.Equal(t, agent.ShapeFirst, req.Shape)
	require.Len(t, req.Messages, 2)
	require.Equal(t, agent.RoleSystem, req.Messages[0].Role)
	require.Contains(t, req.Messages[0].Content, `"name": "add"`)
	require.Equal(t, agent.Message{Role: agent.RoleUser, Content: "What is 6*7?"}, req.Messages[1])
}

func TestRun_ToolThenAnswer(t *testing.T) {
	p := testutil.NewScriptedProvider(
		firstCall("add 1 and 2", "add", `{"a": 1, "b": 2}`),
		nextAnswer("the sum is 3", "3"),
	)
	a := newAgent(t, p, agent.WithTemperature(0.3))

	stream, err := a.Stream(context.Background(), "What is 1+2?", nil)
	require.NoError(t, err)
	require.NotEmpty(t, stream.ID())

	var events []agent.Event
	for {
		ev, err := stream.Next(context.Background())
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		events = append(events, ev)
	}

	require.Len(t, events, 3)
	require.Equal(t, agent.EventThinking, events[0].Type)
	require.Equal(t, "add 1 and 2", events[0].Content)
	require.Equal(t, 1, events[0].Turn)
	require.Equal(t, "3", events[0].ToolResult)
	require.Equal(t, agent.EventThinking, events[1].Type)
	require.Equal(t, agent.Event{Type: agent.EventFinal, Content: "3", Turn: 2}, events[2])

	answer, err := stream.Result()
	require.NoError(t, err)
	require.Equal(t, "3", answer)
	require.Equal(t, 2, stream.Turns())

	// system, task, thought, tool result, thought
	msgs := stream.Conversation().Messages()
	require.Len(t, msgs, 5)
	require.Equal(t, agent.Message{Role: agent.RoleAssistant, Content: "add 1 and 2"}, msgs[2])
	require.Equal(t, agent.RoleUser, msgs[3].Role)
	require.Equal(t, "Function Executed: add\nParameters: {\"a\": 1, \"b\": 2}\nResult: 3", msgs[3].Content)
	require.Equal(t, agent.Message{Role: agent.RoleAssistant, Content: "the sum is 3"}, msgs[4])

	reqs := p.Requests()
	require.Len(t, reqs, 2)
	require.Equal(t, agent.ShapeNext, reqs[1].Shape)
	require.Len(t, reqs[1].Messages, 4)
	require.InDelta(t, 0.3, reqs[1].Temperature, 1e-9)

	_, err = stream.Next(context.Background())
	require.ErrorIs(t, err, io.EOF)
}

func TestRun_ThoughtOnlyTurnContinues(t *testing.T) {
	p := testutil.NewScriptedProvider(
		testutil.Reply(`{"question":"q","thought":"let me think","execute_function":false,"function_name":"","function_parameters":"","final_answer":""}`),
		nextCall("now add", "add", `{"a": 20, "b": 22}`),
		nextAnswer("done", "42"),
	)
	a := newAgent(t, p)

	stream, err := a.Stream(context.Background(), "q", nil)
	require.NoError(t, err)
	for {
		if _, err := stream.Next(context.Background()); err != nil {
			require.ErrorIs(t, err, io.EOF)
			break
		}
	}
	answer, err := stream.Result()
	require.NoError(t, err)
	require.Equal(t, "42", answer)
	// 2 seed messages, 3 thoughts, 1 tool result
	require.Equal(t, 6, stream.Conversation().Len())
}

func TestRun_ExecuteFunctionTakesPrecedence(t *testing.T) {
	q := "q"
	p := testutil.NewScriptedProvider(
		testutil.StepReply(agent.Step{Question: &q, Thought: "t", ExecuteFunction: true, FunctionName: "add", FunctionParameters: `{"a":1,"b":1}`, FinalAnswer: "premature"}),
		nextAnswer("ok", "2"),
	)
	answer, err := newAgent(t, p).Run(context.Background(), "q", nil)
	require.NoError(t, err)
	require.Equal(t, "2", answer)
	require.Equal(t, 2, p.Calls())
}

func TestRun_UnknownToolAborts(t *testing.T) {
	p := testutil.NewScriptedProvider(firstCall("subtract", "subtract", `{"a": 3, "b": 1}`))
	a := newAgent(t, p)

	stream, err := a.Stream(context.Background(), "3-1", nil)
	require.NoError(t, err)

	ev, err := stream.Next(context.Background())
	require.NoError(t, err)
	require.Equal(t, agent.EventThinking, ev.Type)
	require.Empty(t, ev.ToolResult)

	_, err = stream.Next(context.Background())
	var invErr *agent.ToolInvocationError
	require.ErrorAs(t, err, &invErr)
	require.Equal(t, "subtract", invErr.Tool)
	require.ErrorIs(t, err, agent.ErrToolNotFound)

	_, again := stream.Next(context.Background())
	require.Equal(t, err, again)
	_, err = stream.Result()
	require.ErrorIs(t, err, agent.ErrToolNotFound)

	// the failed call leaves no tool result in the transcript
	last, ok := stream.Conversation().Last()
	require.True(t, ok)
	require.Equal(t, agent.RoleAssistant, last.Role)
}

func TestRun_ToolErrorAborts(t *testing.T) {
	p := testutil.NewScriptedProvider(firstCall("bad args", "add", `{"a": 1}`))
	_, err := newAgent(t, p).Run(context.Background(), "q", nil)
	var invErr *agent.ToolInvocationError
	require.ErrorAs(t, err, &invErr)
	require.ErrorContains(t, err, "missing required parameter")
}

func TestRun_DecodeErrorAborts(t *testing.T) {
	p := testutil.NewScriptedProvider(testutil.Reply(`{"thought":"no question"}`))
	_, err := newAgent(t, p).Run(context.Background(), "q", nil)
	var decErr *agent.DecodeError
	require.ErrorAs(t, err, &decErr)
	require.Equal(t, agent.ShapeFirst, decErr.Shape)
	require.Equal(t, "question", decErr.Field)
}

func TestRun_TransportErrorUnchanged(t *testing.T) {
	boom := errors.New("connection reset")
	p := testutil.NewScriptedProvider(
		firstCall("add", "add", `{"a": 1, "b": 2}`),
		testutil.Fail(boom),
	)
	_, err := newAgent(t, p).Run(context.Background(), "q", nil)
	require.Equal(t, boom, err)
	require.Equal(t, 2, p.Calls())
}

func TestRun_MaxTurns(t *testing.T) {
	p := testutil.NewScriptedProvider(
		firstCall("1", "add", `{"a": 1, "b": 1}`),
		nextCall("2", "add", `{"a": 2, "b": 2}`),
		nextCall("3", "add", `{"a": 3, "b": 3}`),
	)
	_, err := newAgent(t, p, agent.WithMaxTurns(2)).Run(context.Background(), "loop", nil)
	require.ErrorIs(t, err, agent.ErrMaxTurnsExceeded)
	require.Equal(t, 2, p.Calls())
}

func TestRun_ContextCanceled(t *testing.T) {
	p := testutil.NewScriptedProvider(firstAnswer("t", "a"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newAgent(t, p).Run(ctx, "q", nil)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 0, p.Calls())
}

func TestRun_DependencyReachesContextTools(t *testing.T) {
	reg, err := agent.NewRegistry(greetTool())
	require.NoError(t, err)
	p := testutil.NewScriptedProvider(
		firstCall("greet", "greet", `{"greeting": "hi"}`),
		nextAnswer("done", "hi ada"),
	)
	a, err := agent.New(p, reg, agent.WithLogger(quietLogger()))
	require.NoError(t, err)

	stream, err := a.Stream(context.Background(), "greet me", &env{User: "ada"})
	require.NoError(t, err)
	ev, err := stream.Next(context.Background())
	require.NoError(t, err)
	require.Equal(t, "hi ada", ev.ToolResult)
}

func TestStream_PromptOptions(t *testing.T) {
	p := testutil.NewScriptedProvider(firstAnswer("t", "a"))
	a := newAgent(t, p,
		agent.WithTemplate("Custom header.\n"),
		agent.WithInstructions("Answer in French."),
		agent.WithContributors(agent.Contributor{
			Name: "date",
			Func: func(context.Context, any) (string, error) { return "Today is Monday.", nil },
		}),
	)
	_, err := a.Run(context.Background(), "q", nil)
	require.NoError(t, err)

	system := p.Requests()[0].Messages[0].Content
	require.True(t, strings.HasPrefix(system, "Custom header.\n["))
	require.True(t, strings.HasSuffix(system, "Your Instructions:\nAnswer in French.\n\nToday is Monday."))
}

func TestResult_BeforeCompletion(t *testing.T) {
	a := newAgent(t, testutil.NewScriptedProvider())
	stream, err := a.Stream(context.Background(), "q", nil)
	require.NoError(t, err)
	_, err = stream.Result()
	require.ErrorIs(t, err, agent.ErrRunIncomplete)
}

func TestScriptedProvider_Exhausted(t *testing.T) {
	_, err := newAgent(t, testutil.NewScriptedProvider()).Run(context.Background(), "q", nil)
	require.ErrorContains(t, err, "script exhausted at call 1")
}

func TestProviderFunc(t *testing.T) {
	var shapes []agent.Shape
	p := agent.ProviderFunc(func(_ context.Context, req agent.CompletionRequest) (string, error) {
		shapes = append(shapes, req.Shape)
		return `{"question":"q","thought":"easy","execute_function":false,"function_name":"","function_parameters":"","final_answer":"ok"}`, nil
	})
	answer, err := newAgent(t, p).Run(context.Background(), "q", nil)
	require.NoError(t, err)
	require.Equal(t, "ok", answer)
	require.Equal(t, []agent.Shape{agent.ShapeFirst}, shapes)
}
