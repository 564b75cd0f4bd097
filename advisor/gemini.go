package advisor

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// maxCalls bounds the function calls answered for a single message.
const maxCalls = 8

// Gemini is a Model backed by the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini model. An empty model name selects DefaultModel.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("missing Gemini API key")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot create Gemini client: %w", err)
	}
	if model == "" {
		model = DefaultModel
	}
	return &Gemini{client: client, model: model}, nil
}

func config(system string, temperature float32) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{Temperature: &temperature}
	if system != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system}}}
	}
	return cfg
}

func (g *Gemini) Generate(ctx context.Context, req Request) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(req.Prompt), config(req.System, req.Temperature))
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

func (g *Gemini) StartChat(ctx context.Context, system string, temperature float32, lib *Library) (Chat, error) {
	cfg := config(system, temperature)
	if decls := lib.Declarations(); len(decls) > 0 {
		cfg.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}
	chat, err := g.client.Chats.Create(ctx, g.model, cfg, nil)
	if err != nil {
		return nil, err
	}
	return &geminiChat{chat: chat, lib: lib}, nil
}

type geminiChat struct {
	chat *genai.Chat
	lib  *Library
}

func (c *geminiChat) Send(ctx context.Context, text string) (string, error) {
	return c.ask(ctx, 0, &genai.Part{Text: text})
}

// ask sends parts and answers the function calls of the model until it
// returns text.
func (c *geminiChat) ask(ctx context.Context, calls int, parts ...*genai.Part) (string, error) {
	resp, err := c.chat.Send(ctx, parts...)
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("empty response")
	}
	part0 := resp.Candidates[0].Content.Parts[0]
	if part0.FunctionCall == nil {
		return resp.Text(), nil
	}
	if calls >= maxCalls {
		return "", fmt.Errorf("too many function calls (%d)", calls)
	}
	logrus.WithField("function", part0.FunctionCall.Name).Debug("advisor function call")
	fresp := c.lib.Call(ctx, part0.FunctionCall)
	return c.ask(ctx, calls+1, &genai.Part{FunctionResponse: fresp})
}
