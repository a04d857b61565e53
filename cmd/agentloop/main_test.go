package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/inspirepan/agent"
	"github.com/inspirepan/agent/internal/config"
	"github.com/inspirepan/agent/internal/testutil"
)

func TestDemoRegistry_Catalog(t *testing.T) {
	reg, err := demoRegistry()
	require.NoError(t, err)

	catalog, err := reg.Describe()
	require.NoError(t, err)

	var tools []map[string]any
	require.NoError(t, json.Unmarshal([]byte(catalog), &tools))
	require.Len(t, tools, 4)

	names := make([]string, 0, len(tools))
	for _, tool := range tools {
		names = append(names, tool["name"].(string))
	}
	require.Equal(t, []string{"add", "multiply", "word_count", "current_time"}, names)

	clock := tools[3]
	require.Equal(t, true, clock["requires_context"])
	require.Empty(t, clock["parameters"])
}

func TestDemoTools_Invoke(t *testing.T) {
	reg, err := demoRegistry()
	require.NoError(t, err)
	ctx := context.Background()

	out, err := reg.Invoke(ctx, "add", `{"a": 2, "b": 40}`, nil)
	require.NoError(t, err)
	require.Equal(t, "42", out)

	out, err = reg.Invoke(ctx, "multiply", `{"a": 2.5}`, nil)
	require.NoError(t, err)
	require.Equal(t, "2.5", out)

	out, err = reg.Invoke(ctx, "word_count", `{"text": "the quick  brown fox"}`, nil)
	require.NoError(t, err)
	require.Equal(t, "4", out)
}

func TestCurrentTime_UsesDependency(t *testing.T) {
	reg, err := demoRegistry()
	require.NoError(t, err)

	env := &toolEnv{
		Location: time.UTC,
		Now:      func() time.Time { return time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC) },
	}
	out, err := reg.Invoke(context.Background(), "current_time", "{}", env)
	require.NoError(t, err)
	require.Equal(t, "Fri, 01 Mar 2024 12:30:00 UTC", out)

	_, err = reg.Invoke(context.Background(), "current_time", "{}", "not an env")
	var invErr *agent.ToolInvocationError
	require.ErrorAs(t, err, &invErr)
	require.Equal(t, "current_time", invErr.Tool)
}

func TestRunTask_RendersEvents(t *testing.T) {
	provider := testutil.NewScriptedProvider(
		testutil.Reply(`{"question":"What is 2+40?","thought":"use add","execute_function":true,"function_name":"add","function_parameters":"{\"a\":2,\"b\":40}","final_answer":""}`),
		testutil.Reply(`{"thought":"done","execute_function":false,"function_name":"","function_parameters":"","final_answer":"42"}`),
	)
	reg, err := demoRegistry()
	require.NoError(t, err)
	a, err := agent.New(provider, reg, agent.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	require.NoError(t, err)

	var out bytes.Buffer
	answer, err := runTask(context.Background(), &out, a, "What is 2+40?", &toolEnv{Location: time.UTC})
	require.NoError(t, err)
	require.Equal(t, "42", answer)

	text := out.String()
	require.Contains(t, text, "What is 2+40?")
	require.Contains(t, text, "use add")
	require.Contains(t, text, "Tool:")
	require.Contains(t, text, "Final Answer:")
	require.Less(t, strings.Index(text, "use add"), strings.Index(text, "Final Answer:"))
}

func TestRunTask_PropagatesError(t *testing.T) {
	provider := testutil.NewScriptedProvider(testutil.Reply("not json"))
	a, err := agent.New(provider, nil, agent.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	require.NoError(t, err)

	_, err = runTask(context.Background(), io.Discard, a, "task", &toolEnv{})
	var decErr *agent.DecodeError
	require.ErrorAs(t, err, &decErr)
}

func TestNewProvider(t *testing.T) {
	for _, name := range []string{config.ProviderOpenAI, config.ProviderAnthropic, config.ProviderOpenRouter} {
		cfg := config.Default()
		cfg.Provider = name
		p, err := newProvider(cfg)
		require.NoError(t, err, name)
		require.NotNil(t, p, name)
	}

	cfg := config.Default()
	cfg.Provider = "gemini"
	_, err := newProvider(cfg)
	require.Error(t, err)
}

func TestToolsCommand(t *testing.T) {
	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"tools"})
	require.NoError(t, cmd.Execute())
	require.Contains(t, out.String(), `"name": "word_count"`)
}

func TestRunCommand_RejectsBadConfig(t *testing.T) {
	cmd := rootCmd()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"run", "--config", "", "--provider", "gemini", "hello"})
	require.ErrorContains(t, cmd.Execute(), "unknown provider")
}
