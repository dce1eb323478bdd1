package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// maxImageBytes is the inline data limit of the Gemini API.
const maxImageBytes = 20 * 1024 * 1024

const ocrPrompt = `Transcribe all readable text in this image exactly as written, keeping line breaks.
Reply with the text only. If the image has no text, reply with an empty string.`

// ReadImage implements ImageReader.
func (s *implSummarizer) ReadImage(ctx context.Context, data []byte, mimeType string) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyContent
	}
	if len(data) > maxImageBytes {
		return "", fmt.Errorf("image too large: %d bytes", len(data))
	}
	if len(s.apiKeys) == 0 {
		return "", errors.New("no Gemini API keys configured")
	}

	s.logger.Info(ctx, "Reading text from %s image (%d bytes) with %s", mimeType, len(data), s.model)
	text, err := s.callGemini(ctx, func(key string) (string, error) {
		return s.readImage(ctx, key, s.model, ocrPrompt, data, mimeType)
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func geminiReadImage(ctx context.Context, key, model, prompt string, data []byte, mimeType string) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("create client: %w", err)
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(prompt),
			genai.NewPartFromBytes(data, mimeType),
		}, genai.RoleUser),
	}
	result, err := client.Models.GenerateContent(ctx, model, contents, nil)
	if err != nil {
		return "", err
	}
	return result.Text(), nil
}
