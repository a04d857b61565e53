package chatcompletion

import (
	"github.com/inspirepan/agent"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/shared"
)

// BuildParams converts an agent request to OpenAI chat completion params.
// The model is left for the caller to set.
func BuildParams(req agent.CompletionRequest, format ResponseFormat) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Temperature: openai.Float(req.Temperature),
	}

	instructionsAdded := false
	for _, msg := range req.Messages {
		switch msg.Role {
		case agent.RoleSystem:
			content := msg.Content
			if format == FormatJSONObject && !instructionsAdded {
				content += "\n\n" + agent.ShapeInstructions(req.Shape)
				instructionsAdded = true
			}
			params.Messages = append(params.Messages, openai.SystemMessage(content))
		case agent.RoleAssistant:
			params.Messages = append(params.Messages, openai.AssistantMessage(msg.Content))
		default:
			params.Messages = append(params.Messages, openai.UserMessage(msg.Content))
		}
	}
	if format == FormatJSONObject && !instructionsAdded {
		params.Messages = append([]openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(agent.ShapeInstructions(req.Shape)),
		}, params.Messages...)
	}

	params.ResponseFormat = responseFormat(req.Shape, format)
	return params
}

func responseFormat(shape agent.Shape, format ResponseFormat) openai.ChatCompletionNewParamsResponseFormatUnion {
	if format == FormatJSONObject {
		obj := shared.NewResponseFormatJSONObjectParam()
		return openai.ChatCompletionNewParamsResponseFormatUnion{OfJSONObject: &obj}
	}
	return openai.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
			JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
				Name:        shape.String(),
				Description: openai.String("one reasoning step of the agent loop"),
				Schema:      agent.ResponseSchema(shape),
				Strict:      openai.Bool(true),
			},
		},
	}
}
