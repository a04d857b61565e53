package agent

import (
	"encoding/json"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/tidwall/gjson"
)

// Shape selects which step record the model is asked to produce.
type Shape int

const (
	// ShapeFirst is requested once per run and echoes the question.
	ShapeFirst Shape = iota
	// ShapeNext is requested on every later turn.
	ShapeNext
)

func (s Shape) String() string {
	switch s {
	case ShapeFirst:
		return "first_step"
	case ShapeNext:
		return "next_step"
	default:
		return "unknown_step"
	}
}

// Step is one decoded model turn: reasoning plus either a tool call or a final answer.
type Step struct {
	Question           *string `json:"question,omitempty"`
	Thought            string  `json:"thought"`
	ExecuteFunction    bool    `json:"execute_function"`
	FunctionName       string  `json:"function_name"`
	FunctionParameters string  `json:"function_parameters"`
	FinalAnswer        string  `json:"final_answer"`
}

// HasFinalAnswer reports whether the step ends the run.
// A requested function call always takes precedence over the answer.
func (s Step) HasFinalAnswer() bool {
	return !s.ExecuteFunction && s.FinalAnswer != ""
}

type fieldKind int

const (
	kindString fieldKind = iota
	kindBool
)

type stepField struct {
	name     string
	kind     fieldKind
	required bool
}

var (
	firstStepFields = []stepField{
		{"question", kindString, true},
		{"thought", kindString, true},
		{"execute_function", kindBool, true},
		{"function_name", kindString, true},
		{"function_parameters", kindString, true},
		{"final_answer", kindString, false},
	}
	nextStepFields = firstStepFields[1:]
)

func fieldsFor(shape Shape) []stepField {
	if shape == ShapeFirst {
		return firstStepFields
	}
	return nextStepFields
}

// DecodeStep parses raw model output as the given shape. It fails with a
// *DecodeError when the text is not a JSON object or a field is missing or
// has the wrong JSON type. Nothing is recovered from a partial payload.
func DecodeStep(raw string, shape Shape) (Step, error) {
	raw = strings.TrimSpace(raw)
	if !gjson.Valid(raw) {
		return Step{}, &DecodeError{Shape: shape, Reason: "invalid JSON", Raw: raw}
	}
	doc := gjson.Parse(raw)
	if !doc.IsObject() {
		return Step{}, &DecodeError{Shape: shape, Reason: "expected a JSON object", Raw: raw}
	}

	values := make(map[string]gjson.Result, len(firstStepFields))
	for _, f := range fieldsFor(shape) {
		v := doc.Get(f.name)
		if !v.Exists() {
			if f.required {
				return Step{}, &DecodeError{Shape: shape, Field: f.name, Reason: "field required", Raw: raw}
			}
			continue
		}
		if !kindMatches(v, f.kind) {
			return Step{}, &DecodeError{Shape: shape, Field: f.name, Reason: "expected " + f.kind.String() + ", got " + v.Type.String(), Raw: raw}
		}
		values[f.name] = v
	}

	step := Step{
		Thought:            values["thought"].String(),
		ExecuteFunction:    values["execute_function"].Bool(),
		FunctionName:       values["function_name"].String(),
		FunctionParameters: values["function_parameters"].String(),
		FinalAnswer:        values["final_answer"].String(),
	}
	if shape == ShapeFirst {
		q := values["question"].String()
		step.Question = &q
	}
	return step, nil
}

func kindMatches(v gjson.Result, kind fieldKind) bool {
	switch kind {
	case kindString:
		return v.Type == gjson.String
	case kindBool:
		return v.Type == gjson.True || v.Type == gjson.False
	}
	return false
}

func (k fieldKind) String() string {
	if k == kindBool {
		return "boolean"
	}
	return "string"
}

type nextStepPayload struct {
	Thought            string `json:"thought" jsonschema_description:"your reasoning about the task or the last function result"`
	ExecuteFunction    bool   `json:"execute_function" jsonschema_description:"true if a function must be executed next"`
	FunctionName       string `json:"function_name" jsonschema_description:"the name of one of the available functions, empty if none"`
	FunctionParameters string `json:"function_parameters" jsonschema_description:"the function arguments as a JSON object encoded in a string, empty if none"`
	FinalAnswer        string `json:"final_answer" jsonschema_description:"your complete answer once the task is finished, otherwise empty"`
}

type firstStepPayload struct {
	Question           string `json:"question" jsonschema_description:"the input question"`
	Thought            string `json:"thought" jsonschema_description:"your step-by-step thinking"`
	ExecuteFunction    bool   `json:"execute_function" jsonschema_description:"true if a function must be executed next"`
	FunctionName       string `json:"function_name" jsonschema_description:"the name of one of the available functions, empty if none"`
	FunctionParameters string `json:"function_parameters" jsonschema_description:"the function arguments as a JSON object encoded in a string, empty if none"`
	FinalAnswer        string `json:"final_answer" jsonschema_description:"the answer when no function call is needed, otherwise empty"`
}

// ResponseSchema returns the strict JSON Schema of a shape for providers that
// support structured output. Every property is required and no others are allowed.
func ResponseSchema(shape Shape) map[string]any {
	r := &jsonschema.Reflector{
		Anonymous:      true,
		DoNotReference: true,
		ExpandedStruct: true,
	}
	var s *jsonschema.Schema
	if shape == ShapeFirst {
		s = r.Reflect(&firstStepPayload{})
	} else {
		s = r.Reflect(&nextStepPayload{})
	}
	s.Version = ""

	data, err := json.Marshal(s)
	if err != nil {
		panic("agent: marshal step schema: " + err.Error())
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		panic("agent: unmarshal step schema: " + err.Error())
	}
	return out
}

// ShapeInstructions describes the expected reply for providers without native
// structured output. It embeds the JSON Schema of the shape.
func ShapeInstructions(shape Shape) string {
	schema, err := json.MarshalIndent(ResponseSchema(shape), "", "  ")
	if err != nil {
		panic("agent: marshal step schema: " + err.Error())
	}
	return "Reply with a single JSON object and nothing else. It must match this JSON Schema (" +
		shape.String() + "):\n" + string(schema)
}
