package reasoning

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/ai/azopenai"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"

	"github.com/3279mitsunaka/mcp-sample/internal/api"
	"github.com/3279mitsunaka/mcp-sample/pkg/logging"
)

const defaultSystemPrompt = "You are an assistant inside a tool host. " +
	"When one of the offered functions answers the user's request, call it. " +
	"Otherwise answer in plain text."

// chatCompleter is the subset of *azopenai.Client used by the reasoner.
type chatCompleter interface {
	GetChatCompletions(ctx context.Context, body azopenai.ChatCompletionsOptions, options *azopenai.GetChatCompletionsOptions) (azopenai.GetChatCompletionsResponse, error)
}

// AzureOpenAIReasoner asks an Azure OpenAI chat deployment to pick between a
// text answer and a function call.
type AzureOpenAIReasoner struct {
	client       chatCompleter
	deployment   string
	systemPrompt string
}

// NewAzureOpenAIReasoner creates a reasoner backed by an Azure OpenAI endpoint
// using key authentication.
func NewAzureOpenAIReasoner(endpoint, apiKey, deployment string) (*AzureOpenAIReasoner, error) {
	if endpoint == "" || deployment == "" {
		return nil, errors.New("azure openai endpoint and deployment are required")
	}
	if apiKey == "" {
		return nil, errors.New("azure openai api key is empty")
	}

	client, err := azopenai.NewClientWithKeyCredential(endpoint, azcore.NewKeyCredential(apiKey), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create azure openai client: %w", err)
	}
	return newAzureOpenAIReasoner(client, deployment), nil
}

func newAzureOpenAIReasoner(client chatCompleter, deployment string) *AzureOpenAIReasoner {
	return &AzureOpenAIReasoner{
		client:       client,
		deployment:   deployment,
		systemPrompt: defaultSystemPrompt,
	}
}

func (r *AzureOpenAIReasoner) Decide(ctx context.Context, req Request) (Outcome, error) {
	opts := azopenai.ChatCompletionsOptions{
		DeploymentName: to.Ptr(r.deployment),
		Messages:       r.messages(req),
	}
	if tools := toolDefinitions(req.Capabilities); len(tools) > 0 {
		opts.Tools = tools
	}

	resp, err := r.client.GetChatCompletions(ctx, opts, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get chat completion: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message == nil {
		return nil, errors.New("chat completion returned no choices")
	}

	msg := resp.Choices[0].Message
	for _, call := range msg.ToolCalls {
		fn, ok := call.(*azopenai.ChatCompletionsFunctionToolCall)
		if !ok || fn.Function == nil || fn.Function.Name == nil {
			continue
		}
		args := map[string]any{}
		if fn.Function.Arguments != nil && strings.TrimSpace(*fn.Function.Arguments) != "" {
			if err := json.Unmarshal([]byte(*fn.Function.Arguments), &args); err != nil {
				return nil, fmt.Errorf("failed to decode arguments for %s: %w", *fn.Function.Name, err)
			}
		}
		logging.Debug("Reasoner", "Model selected %s", *fn.Function.Name)
		return Invocation{Capability: *fn.Function.Name, Arguments: args}, nil
	}

	if msg.Content != nil {
		return Text{Content: *msg.Content}, nil
	}
	return Text{}, nil
}

// messages maps the conversation into chat messages. Tool results become user
// messages because the model never issued a matching tool call id in this turn.
func (r *AzureOpenAIReasoner) messages(req Request) []azopenai.ChatRequestMessageClassification {
	out := []azopenai.ChatRequestMessageClassification{
		&azopenai.ChatRequestSystemMessage{
			Content: azopenai.NewChatRequestSystemMessageContent(r.systemPrompt),
		},
	}

	history := req.History
	// The host records the utterance before asking, so drop the trailing copy.
	if n := len(history); n > 0 && history[n-1].Role == RoleUser && history[n-1].Content == req.Utterance {
		history = history[:n-1]
	}

	for _, m := range history {
		switch m.Role {
		case RoleAssistant:
			out = append(out, &azopenai.ChatRequestAssistantMessage{
				Content: azopenai.NewChatRequestAssistantMessageContent(m.Content),
			})
		case RoleTool:
			out = append(out, &azopenai.ChatRequestUserMessage{
				Content: azopenai.NewChatRequestUserMessageContent("Tool result: " + m.Content),
			})
		default:
			out = append(out, &azopenai.ChatRequestUserMessage{
				Content: azopenai.NewChatRequestUserMessageContent(m.Content),
			})
		}
	}

	return append(out, &azopenai.ChatRequestUserMessage{
		Content: azopenai.NewChatRequestUserMessageContent(req.Utterance),
	})
}

func toolDefinitions(caps []api.Capability) []azopenai.ChatCompletionsToolDefinitionClassification {
	tools := make([]azopenai.ChatCompletionsToolDefinitionClassification, 0, len(caps))
	for _, c := range caps {
		schema := []byte(c.InputSchema)
		if len(schema) == 0 {
			schema = []byte(`{"type":"object","properties":{}}`)
		}
		tools = append(tools, &azopenai.ChatCompletionsFunctionToolDefinition{
			Type: to.Ptr("function"),
			Function: &azopenai.ChatCompletionsFunctionToolDefinitionFunction{
				Name:        to.Ptr(c.Name),
				Description: to.Ptr(c.Description),
				Parameters:  schema,
			},
		})
	}
	return tools
}
