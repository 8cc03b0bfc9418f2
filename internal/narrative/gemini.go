package narrative

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"wasteland-server/internal/domain"
)

//go:embed prompts/narrate.txt
var narratePrompt string

var narrateTmpl = template.Must(template.New("narrate").Parse(narratePrompt))

const DefaultModel = "gemini-2.5-flash"

// Gemini - нарратор на внешней модели. Вызывается хостом с таймаутом.
type Gemini struct {
	client   *genai.Client
	model    *genai.GenerativeModel
	Language string
	Location string
}

func NewGemini(ctx context.Context, apiKey, modelName string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: empty api key")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	if modelName == "" {
		modelName = DefaultModel
	}
	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.8)
	model.SetMaxOutputTokens(120)

	return &Gemini{
		client:   client,
		model:    model,
		Language: "Russian",
	}, nil
}

func (g *Gemini) Close() {
	g.client.Close()
}

func (g *Gemini) Narrate(ctx context.Context, events []domain.Event) (string, error) {
	prompt, err := buildPrompt(g.Language, g.Location, events)
	if err != nil {
		return "", err
	}

	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content returned from Gemini")
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("unexpected response type from Gemini")
	}
	return strings.TrimSpace(string(text)), nil
}

func buildPrompt(language, location string, events []domain.Event) (string, error) {
	var buf bytes.Buffer
	data := struct {
		Language string
		Location string
		Events   []domain.Event
	}{
		Language: language,
		Location: location,
		Events:   events,
	}
	if err := narrateTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
