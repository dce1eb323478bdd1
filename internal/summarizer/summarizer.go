package summarizer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"google.golang.org/genai"
)

// maxContentRunes bounds the prompt for very long transcripts.
const maxContentRunes = 200_000

const digestPrompt = `You are given the transcript or text of a web resource (%s).
Reply with ONLY a JSON object, no prose and no markdown, of the form:
{"title": "...", "summary": "...", "tags": ["...", "..."]}

Rules:
- title: one short line describing the topic
- summary: 3 to 8 sentences covering the main points in the order they appear
- tags: 3 to 8 lowercase keywords
- write title and summary in the language of the text

Text:
---
%s
---`

// Summarize implements Summarizer.
func (s *implSummarizer) Summarize(ctx context.Context, source, content string) (Digest, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return Digest{}, ErrEmptyContent
	}
	if len(s.apiKeys) == 0 {
		return Digest{}, errors.New("no Gemini API keys configured")
	}
	if utf8.RuneCountInString(content) > maxContentRunes {
		content = string([]rune(content)[:maxContentRunes])
	}

	s.logger.Info(ctx, "Summarizing %s (%d chars) with %s", source, len(content), s.model)
	prompt := fmt.Sprintf(digestPrompt, source, content)
	reply, err := s.callGemini(ctx, func(key string) (string, error) {
		return s.generate(ctx, key, s.model, prompt)
	})
	if err != nil {
		return Digest{}, err
	}

	digest, err := parseDigest(reply)
	if err != nil {
		return Digest{}, err
	}
	s.logger.Info(ctx, "Digest ready: %q (%d tags)", digest.Title, len(digest.Tags))
	return digest, nil
}

// callGemini runs call with the current key and returns the reply text.
// Rotates API keys on 429 / quota errors.
func (s *implSummarizer) callGemini(ctx context.Context, call func(key string) (string, error)) (string, error) {
	attempts := len(s.apiKeys)
	var lastErr error

	for range attempts {
		idx, key := s.key()

		text, err := call(key)
		if err != nil {
			errMsg := err.Error()
			if strings.Contains(errMsg, "429") || strings.Contains(errMsg, "quota") || strings.Contains(errMsg, "RESOURCE_EXHAUSTED") {
				s.logger.Warn(ctx, "Key %d rate limited, rotating...", idx+1)
				s.rotateKey(idx)
				lastErr = err
				continue
			}
			return "", fmt.Errorf("generate content: %w", err)
		}
		if strings.TrimSpace(text) == "" {
			return "", fmt.Errorf("empty response from Gemini")
		}
		return text, nil
	}

	return "", fmt.Errorf("all API keys exhausted: %w", lastErr)
}

func (s *implSummarizer) key() (int, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentKey, s.apiKeys[s.currentKey]
}

// rotateKey advances past idx unless another caller already did.
func (s *implSummarizer) rotateKey(idx int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentKey == idx {
		s.currentKey = (s.currentKey + 1) % len(s.apiKeys)
	}
}

func geminiGenerate(ctx context.Context, key, model, prompt string) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("create client: %w", err)
	}

	result, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return "", err
	}

	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return "", nil
	}
	var text strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			text.WriteString(part.Text)
		}
	}
	return text.String(), nil
}

// parseDigest accepts a bare JSON object, optionally wrapped in ``` fences or prose.
func parseDigest(reply string) (Digest, error) {
	s := strings.TrimSpace(reply)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return Digest{}, fmt.Errorf("no JSON object in model reply")
	}

	var d Digest
	if err := json.Unmarshal([]byte(s[start:end+1]), &d); err != nil {
		return Digest{}, fmt.Errorf("decode digest: %w", err)
	}

	d.Title = strings.TrimSpace(d.Title)
	d.Summary = strings.TrimSpace(d.Summary)
	tags := d.Tags[:0]
	seen := make(map[string]bool)
	for _, t := range d.Tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		tags = append(tags, t)
	}
	d.Tags = tags

	if d.Title == "" && d.Summary == "" {
		return Digest{}, fmt.Errorf("model reply has no title or summary")
	}
	return d, nil
}
