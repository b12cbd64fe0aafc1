package openai

import (
	"context"
	"errors"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// ErrMissingAPIKey is returned when no OPENAI_API_KEY is configured.
// Handlers map it to a 500 with an explicit message.
var ErrMissingAPIKey = errors.New("OPENAI_API_KEY missing")

const defaultModel = "gpt-4o-mini"

// Client wraps the OpenAI API for quiz generation and answer validation.
type Client struct {
	api   *openai.Client
	key   string
	Model string
}

func NewClient() *Client {
	key := sanitizeEnv(os.Getenv("OPENAI_API_KEY"))
	model := sanitizeEnv(os.Getenv("QUIZ_MODEL"))
	if model == "" {
		model = defaultModel
	}
	return &Client{api: openai.NewClient(key), key: key, Model: model}
}

// sanitizeEnv trims whitespace and strips matching surrounding quotes that
// sneak into .env files.
func sanitizeEnv(v string) string {
	v = strings.TrimSpace(v)
	if len(v) >= 2 {
		if (v[0] == '"' && v[len(v)-1] == '"') || (v[0] == '\'' && v[len(v)-1] == '\'') {
			return v[1 : len(v)-1]
		}
	}
	return v
}

// StreamChat sends a system+user prompt pair and streams the completion
// tokens over the returned channel. The channel is closed when the model
// finishes or the context is cancelled.
func (c *Client) StreamChat(ctx context.Context, system, user string) (<-chan string, error) {
	if c.key == "" {
		return nil, ErrMissingAPIKey
	}
	stream, err := c.api.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model: c.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return nil, err
	}

	ch := make(chan string)

	go func() {
		defer stream.Close()
		defer close(ch)
		for {
			resp, err := stream.Recv()
			if err != nil {
				break
			}
			if len(resp.Choices) > 0 {
				select {
				case ch <- resp.Choices[0].Delta.Content:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch, nil
}
