package completion

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-2.0-flash"

var GeminiModels = []string{
	"gemini-2.0-flash",
	"gemini-2.0-flash-lite",
	"gemini-1.5-flash",
	"gemini-1.5-pro",
}

// GeminiProvider calls Google's Gemini API through the genai SDK. One client
// is kept per API key so a rotated key takes effect on the next request.
type GeminiProvider struct {
	apiKey KeySource

	mu     sync.Mutex
	key    string
	client *genai.Client
}

func NewGeminiProvider(apiKey KeySource) *GeminiProvider {
	return &GeminiProvider{apiKey: apiKey}
}

func (g *GeminiProvider) clientFor(ctx context.Context, key string) (*genai.Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.client != nil && g.key == key {
		return g.client, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	g.key, g.client = key, client
	return client, nil
}

// geminiContents splits a transcript into the system instruction and the
// user/model turns Gemini expects.
func geminiContents(msgs []Message) (string, []*genai.Content) {
	var system []string
	contents := make([]*genai.Content, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case "system":
			system = append(system, m.Content)
		case "assistant":
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}
	return strings.Join(system, "\n\n"), contents
}

func (g *GeminiProvider) Complete(ctx context.Context, p Params) (*Result, error) {
	key := ""
	if g.apiKey != nil {
		key = g.apiKey()
	}
	if key == "" {
		return nil, ErrMissingAPIKey
	}
	client, err := g.clientFor(ctx, key)
	if err != nil {
		return nil, err
	}

	system, contents := geminiContents(p.Messages)
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(p.Temperature)),
		TopP:            genai.Ptr(float32(p.TopP)),
		MaxOutputTokens: int32(p.MaxTokens),
		StopSequences:   p.Stop,
	}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	resp, err := client.Models.GenerateContent(ctx, p.Model, contents, cfg)
	if err != nil {
		msg := err.Error()
		if strings.Contains(msg, "RESOURCE_EXHAUSTED") || strings.Contains(msg, "Error 429") {
			return nil, fmt.Errorf("%w: %s", ErrRateLimited, msg)
		}
		return nil, fmt.Errorf("gemini GenerateContent failed: %w", err)
	}

	out := &Result{Text: resp.Text(), Model: resp.ModelVersion}
	if out.Model == "" {
		out.Model = p.Model
	}
	if um := resp.UsageMetadata; um != nil {
		out.Usage = Usage{
			PromptTokens:     int(um.PromptTokenCount),
			CompletionTokens: int(um.CandidatesTokenCount),
			TotalTokens:      int(um.TotalTokenCount),
		}
	}
	return out, nil
}
