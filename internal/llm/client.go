// Package llm polishes rule-based rewrites through an OpenAI-compatible chat
// endpoint. Polishing is strictly best-effort: any transport error, empty or
// multi-line reply, or a reply disproportionately longer than the draft falls
// back to the draft, so the LLM path never fails a request.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/time/rate"
)

// systemPrompt constrains the model to orthographic cleanup. Meaning,
// quantities, dates and place names must survive untouched.
const systemPrompt = "Du er en dansk tekst-normaliseringsassistent for fakturalinjer. " +
	"Du får en original tekst og et udkast fra en regelbaseret motor. " +
	"Din opgave er KUN at lave små justeringer for at gøre teksten mere naturlig, " +
	"men du må ikke ændre betydning, antal, datoer eller stednavne. " +
	"Returnér KUN én linje i HELT UPPERCASE, uden forklaring."

// Options configures a polish client.
type Options struct {
	// BaseURL is the API root, e.g. "https://api.openai.com/v1".
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
	// RatePerSecond bounds outbound calls; zero disables the limiter.
	RatePerSecond float64
	Burst         int

	HTTPClient *http.Client
}

// Client calls an OpenAI-compatible chat completion endpoint.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
	limiter *rate.Limiter
}

// New builds a polish client.
func New(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	var limiter *rate.Limiter
	if opts.RatePerSecond > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), burst)
	}
	return &Client{
		baseURL: strings.TrimSuffix(opts.BaseURL, "/"),
		apiKey:  opts.APIKey,
		model:   opts.Model,
		http:    httpClient,
		limiter: limiter,
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Polish asks the model to smooth the rule-based draft. The draft is
// returned unchanged whenever the reply cannot be trusted.
func (c *Client) Polish(ctx context.Context, original, draft string) string {
	polished, err := c.polish(ctx, original, draft)
	if err != nil || polished == "" {
		return draft
	}
	return polished
}

func (c *Client) polish(ctx context.Context, original, draft string) (string, error) {
	if c.baseURL == "" || c.model == "" {
		return "", fmt.Errorf("llm: base URL and model required")
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	user := fmt.Sprintf("ORIGINAL: %s\nUDKAST: %s\nSVAR:", original, draft)
	reply, err := c.chat(ctx, systemPrompt, user)
	if err != nil {
		return "", err
	}

	reply = strings.TrimSpace(reply)
	if strings.ContainsRune(reply, '\n') {
		return "", nil
	}
	if utf8.RuneCountInString(reply) > 2*utf8.RuneCountInString(draft)+80 {
		return "", nil
	}
	return reply, nil
}

func (c *Client) chat(ctx context.Context, system, user string) (string, error) {
	messages := []chatMessage{{Role: "system", Content: system}, {Role: "user", Content: user}}
	payload, err := c.send(ctx, messages)
	if err != nil {
		return "", err
	}
	if len(payload.Choices) == 0 {
		return "", fmt.Errorf("llm: empty response")
	}
	return payload.Choices[0].Message.Content, nil
}

func (c *Client) send(ctx context.Context, messages []chatMessage) (*chatResponse, error) {
	reqBody, err := json.Marshal(chatRequest{Model: c.model, Messages: messages})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	var payload chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	if payload.Error != nil {
		return nil, fmt.Errorf("llm error: %s", payload.Error.Message)
	}
	return &payload, nil
}
