package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// systemPrompt steers Gemini toward short, empathetic symptom triage.
// MediMind never names or recommends medicines and always defers severe
// symptoms to a real doctor.
const systemPrompt = `You are MediMind, a warm, compassionate, and professional medical
assistant. Help users understand their health situation based on their
symptoms: ask one clear question at a time about onset, duration, severity,
and triggers, and adapt the conversation length to how much the user wants
to talk. You are not a doctor and you must never prescribe, name, or
recommend any medicines. Suggest only safe self-care steps (rest, hydration,
diet, avoiding certain activities). If symptoms are concerning, recommend
visiting a doctor soon; if the user reports severe or urgent symptoms such
as chest pain, difficulty breathing, or sudden weakness, tell them to seek
medical help right away. Keep responses short and easy to read, two or three
sentences unless more detail is essential, and end with an encouraging note.`

// GeminiClient implements LLMClient against Google's Gemini API.
type GeminiClient struct {
	client  *genai.Client
	modelID string
}

func NewGeminiClient(ctx context.Context, apiKey, modelID string) (*GeminiClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("chat: gemini api key is required")
	}
	if strings.TrimSpace(modelID) == "" {
		modelID = "gemini-1.5-flash"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("chat: create gemini client: %w", err)
	}

	return &GeminiClient{client: client, modelID: modelID}, nil
}

func (c *GeminiClient) Reply(ctx context.Context, message string) (string, error) {
	model := c.client.GenerativeModel(c.modelID)
	model.SetTemperature(0.7)
	model.SetMaxOutputTokens(1000)
	model.SystemInstruction = genai.NewUserContent(genai.Text(systemPrompt))

	resp, err := model.GenerateContent(ctx, genai.Text(message))
	if err != nil {
		return "", fmt.Errorf("chat: gemini completion failed: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return "", errors.New("chat: gemini returned no candidates")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", errors.New("chat: gemini returned empty content")
	}

	var out strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			out.WriteString(string(text))
		}
	}

	return strings.TrimSpace(out.String()), nil
}

func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}
