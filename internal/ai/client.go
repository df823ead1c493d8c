// Package ai proxies trainee questions to an LLM with a fitness-coach
// system prompt. Conversation history is persisted so context survives
// across app sessions.
package ai

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sethvargo/go-retry"

	"github.com/fitdesert/fitdesert/internal/model"
)

const systemPrompt = `You are a certified fitness and nutrition coach for a gym app.
Answer questions about workouts, diet, recovery, and general fitness.
Keep answers short and practical. If asked about injuries or medical
conditions, recommend seeing a doctor instead of giving advice.`

// HistoryLimit caps how many stored messages are replayed per request.
const HistoryLimit = 20

// completionAPI is the slice of the OpenAI client we use. Narrowed for
// tests.
type completionAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type Client struct {
	api     completionAPI
	model   string
	backoff time.Duration
}

func NewClient(apiKey, modelName string) *Client {
	c := &Client{model: modelName, backoff: 500 * time.Millisecond}
	if c.model == "" {
		c.model = openai.GPT4oMini
	}
	if apiKey != "" {
		c.api = openai.NewClient(apiKey)
	}
	return c
}

// Configured returns true if an API key was provided.
func (c *Client) Configured() bool {
	return c.api != nil
}

// Ask sends the user's message with replayed history and returns the
// assistant's reply. Transient API failures are retried with backoff.
func (c *Client) Ask(ctx context.Context, history []*model.ChatMessage, message string) (string, error) {
	if !c.Configured() {
		return "", fmt.Errorf("ai assistant not configured")
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt,
	})
	for _, m := range history {
		role := openai.ChatMessageRoleUser
		if m.Role == "assistant" {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: m.Message})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: message,
	})

	var reply string
	backoff := retry.WithMaxRetries(3, retry.NewExponential(c.backoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:    c.model,
			Messages: messages,
		})
		if err != nil {
			return retry.RetryableError(err)
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("no choices in completion response")
		}
		reply = resp.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	return reply, nil
}
