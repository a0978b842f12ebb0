package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"app/internal/model"
)

const critiqueSystemPrompt = `You are a funny but helpful website critic. Point out design problems in a way that makes people laugh AND learn.

Rules:
1. Use SIMPLE English - like you're talking to a friend
2. No design jargon
3. Keep sentences short and punchy
4. Be funny but not mean
5. Every roast should help them understand what's wrong
6. Use everyday comparisons ("messy room", "hard to read menu")

Look for: can people tell what the site is about in 3 seconds, is the main button easy to find, are the colors easy on the eyes, is the text readable, does it look trustworthy, is there too much going on, does it look modern.`

const critiqueUserPrompt = `Look at this landing page and roast it. Give me:
1. 7-10 roast points - short, funny observations about what's wrong (max 15 words each)
2. 5-7 fix suggestions - simple advice anyone can understand
3. Overall score - rate 1-10, honest but fair
4. Verdict - one funny sentence that sums it all up (max 15 words)

Format as JSON:
{"roastPoints": ["..."], "fixSuggestions": ["..."], "overallScore": 5, "verdict": "..."}`

const defaultVerdict = "This page needs some love."

// CritiqueService sends a screenshot to the critique model and returns its
// structured verdict.
type CritiqueService interface {
	Critique(ctx context.Context, screenshotPNG []byte) (model.Critique, error)
}

type critiqueService struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
	siteURL string
}

// NewCritiqueService creates a client for an OpenAI-compatible chat completions API.
func NewCritiqueService(baseURL, apiKey, modelName, siteURL string, timeout time.Duration) CritiqueService {
	return &critiqueService{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   modelName,
		siteURL: siteURL,
	}
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (s *critiqueService) Critique(ctx context.Context, screenshotPNG []byte) (model.Critique, error) {
	imageURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(screenshotPNG)
	requestBody := map[string]interface{}{
		"model": s.model,
		"messages": []map[string]interface{}{
			{"role": "system", "content": critiqueSystemPrompt},
			{
				"role": "user",
				"content": []map[string]interface{}{
					{"type": "text", "text": critiqueUserPrompt},
					{"type": "image_url", "image_url": map[string]string{"url": imageURL}},
				},
			},
		},
		"max_tokens":      2000,
		"temperature":     0.85,
		"response_format": map[string]string{"type": "json_object"},
	}

	bodyJSON, err := json.Marshal(requestBody)
	if err != nil {
		return model.Critique{}, fmt.Errorf("failed to marshal critique request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/chat/completions", bytes.NewReader(bodyJSON))
	if err != nil {
		return model.Critique{}, fmt.Errorf("failed to create critique request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("HTTP-Referer", s.siteURL)
	req.Header.Set("X-Title", "Roast My Landing Page")

	resp, err := s.client.Do(req)
	if err != nil {
		return model.Critique{}, fmt.Errorf("critique request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.Critique{}, fmt.Errorf("failed to read critique response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var errResp chatCompletionResponse
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != nil && errResp.Error.Message != "" {
			return model.Critique{}, fmt.Errorf("critique model error: %s", errResp.Error.Message)
		}
		return model.Critique{}, fmt.Errorf("critique model returned HTTP %d", resp.StatusCode)
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return model.Critique{}, fmt.Errorf("failed to decode critique response: %w", err)
	}
	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return model.Critique{}, fmt.Errorf("no response from critique model")
	}

	return parseCritique([]byte(completion.Choices[0].Message.Content))
}

// parseCritique decodes the model's JSON verdict, defaulting any missing field
// to a neutral value.
func parseCritique(raw []byte) (model.Critique, error) {
	var parsed struct {
		RoastPoints    []string `json:"roastPoints"`
		FixSuggestions []string `json:"fixSuggestions"`
		OverallScore   *int     `json:"overallScore"`
		Verdict        string   `json:"verdict"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return model.Critique{}, fmt.Errorf("malformed critique payload: %w", err)
	}

	c := model.Critique{
		RoastPoints:    parsed.RoastPoints,
		FixSuggestions: parsed.FixSuggestions,
		OverallScore:   5,
		Verdict:        parsed.Verdict,
	}
	if c.RoastPoints == nil {
		c.RoastPoints = []string{}
	}
	if c.FixSuggestions == nil {
		c.FixSuggestions = []string{}
	}
	if parsed.OverallScore != nil {
		c.OverallScore = *parsed.OverallScore
	}
	if c.Verdict == "" {
		c.Verdict = defaultVerdict
	}
	return c, nil
}
