package agent

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// RunStream is a lazy, finite, non-restartable sequence of run events.
// It owns the run's Conversation and is not safe for concurrent use.
type RunStream struct {
	id     string
	agent  *Agent
	conv   *Conversation
	dep    any
	logger *slog.Logger

	turns   int
	pending []Event
	final   string
	done    bool
	err     error
}

// ID returns the run identifier attached to log records.
func (s *RunStream) ID() string { return s.id }

// Conversation returns the transcript owned by this run.
func (s *RunStream) Conversation() *Conversation { return s.conv }

// Turns returns the number of model calls decoded so far.
func (s *RunStream) Turns() int { return s.turns }

// Next returns the next event. It returns io.EOF after the final event and
// keeps returning the first error once the run has failed.
func (s *RunStream) Next(ctx context.Context) (Event, error) {
	if len(s.pending) > 0 {
		return s.dequeue(), nil
	}
	if s.err != nil {
		return Event{}, s.err
	}
	if s.done {
		return Event{}, io.EOF
	}

	if err := s.turn(ctx); err != nil {
		s.err = err
		s.logger.Error("run aborted", "turn", s.turns, "error", err)
	}
	if len(s.pending) > 0 {
		return s.dequeue(), nil
	}
	return Event{}, s.err
}

// Result returns the final answer once the stream has ended.
func (s *RunStream) Result() (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if !s.done {
		return "", ErrRunIncomplete
	}
	return s.final, nil
}

func (s *RunStream) turn(ctx context.Context) error {
	cfg := s.agent.cfg
	if cfg.MaxTurns > 0 && s.turns >= cfg.MaxTurns {
		return fmt.Errorf("%w: %d turns without a final answer", ErrMaxTurnsExceeded, s.turns)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	shape := ShapeNext
	if s.turns == 0 {
		shape = ShapeFirst
	}

	raw, err := s.agent.provider.Complete(ctx, CompletionRequest{
		Messages:    s.conv.Messages(),
		Shape:       shape,
		Temperature: cfg.Temperature,
	})
	if err != nil {
		return err
	}

	step, err := DecodeStep(raw, shape)
	if err != nil {
		return err
	}
	s.turns++

	s.conv.Append(RoleAssistant, step.Thought)
	s.logger.Info("thought", "turn", s.turns, "thought", step.Thought)

	ev := Event{Type: EventThinking, Content: step.Thought, Turn: s.turns, Step: &step}

	switch {
	case step.ExecuteFunction:
		s.logger.Info("function", "turn", s.turns, "name", step.FunctionName, "parameters", step.FunctionParameters)
		res, err := s.agent.registry.Invoke(ctx, step.FunctionName, step.FunctionParameters, s.dep)
		if err != nil {
			// the thought is still delivered before the error
			s.enqueue(ev)
			return err
		}
		s.conv.Append(RoleUser, toolResultContent(step.FunctionName, step.FunctionParameters, res))
		ev.ToolResult = res
		s.enqueue(ev)
	case step.FinalAnswer != "":
		s.enqueue(ev)
		s.enqueue(Event{Type: EventFinal, Content: step.FinalAnswer, Turn: s.turns})
		s.final = step.FinalAnswer
		s.done = true
		s.logger.Info("final answer", "turns", s.turns)
	default:
		s.enqueue(ev)
	}
	return nil
}

func (s *RunStream) enqueue(ev Event) {
	s.pending = append(s.pending, ev)
}

func (s *RunStream) dequeue() Event {
	ev := s.pending[0]
	s.pending = s.pending[1:]
	return ev
}
