package lingoquiz

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// Translator translates text into the language identified by lang
type Translator interface {
	Translate(ctx context.Context, text, lang string) (string, error)
}

// TranslateOrOriginal translates text and falls back to text itself when
// the translator fails. The fallback is reported through the bool.
func TranslateOrOriginal(ctx context.Context, t Translator, text, lang string) (string, bool) {
	if strings.TrimSpace(text) == "" {
		return text, false
	}
	translated, err := t.Translate(ctx, text, lang)
	if err != nil {
		VerboseLog("translation fell back to original text", "lang", lang, "error", err)
		return text, true
	}
	return translated, false
}

// NewTranslator builds the translator selected in cfg
func NewTranslator(cfg *Config) Translator {
	if cfg.Translator.Provider == "openai" {
		return NewOpenAITranslator(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Model)
	}
	return NewGoogleTranslator(cfg.Translator.Endpoint, cfg.HTTP.Timeout)
}

// GoogleTranslator uses the public Google Translate endpoint
type GoogleTranslator struct {
	endpoint   string
	httpClient *http.Client
}

func NewGoogleTranslator(endpoint string, timeout time.Duration) *GoogleTranslator {
	return &GoogleTranslator{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (g *GoogleTranslator) Translate(ctx context.Context, text, lang string) (string, error) {
	q := url.Values{}
	q.Set("client", "gtx")
	q.Set("sl", "auto")
	q.Set("tl", lang)
	q.Set("dt", "t")

	form := url.Values{}
	form.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint+"?"+q.Encode(), strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTranslation, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTranslation, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", ErrTranslation, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: HTTP %d", ErrTranslation, resp.StatusCode)
	}

	return parseGoogleTranslation(body)
}

// parseGoogleTranslation reads [[["segment","source",...],...],...]
func parseGoogleTranslation(body []byte) (string, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil || len(raw) == 0 {
		return "", fmt.Errorf("%w: malformed response", ErrTranslation)
	}

	var segments [][]any
	if err := json.Unmarshal(raw[0], &segments); err != nil {
		return "", fmt.Errorf("%w: malformed segments: %v", ErrTranslation, err)
	}

	var sb strings.Builder
	for _, seg := range segments {
		if len(seg) == 0 {
			continue
		}
		if s, ok := seg[0].(string); ok {
			sb.WriteString(s)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("%w: empty translation", ErrTranslation)
	}
	return sb.String(), nil
}

// OpenAITranslator translates with a chat completion model
type OpenAITranslator struct {
	client *openai.Client
	model  string
}

// NewOpenAITranslator creates a translator. baseURL may be empty for the
// default API endpoint.
func NewOpenAITranslator(apiKey, baseURL, model string) *OpenAITranslator {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &OpenAITranslator{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

func (o *OpenAITranslator) Translate(ctx context.Context, text, lang string) (string, error) {
	target := lang
	if l, err := LookupLanguage(AllLanguages, lang); err == nil {
		target = l.Name
	}

	resp, err := o.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: o.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: fmt.Sprintf("You are a translator. Translate the user's text into %s. Reply with the translation only, without quotes or commentary.", target),
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: text,
				},
			},
		},
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTranslation, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in response", ErrTranslation)
	}

	translated := strings.TrimSpace(resp.Choices[0].Message.Content)
	if translated == "" {
		return "", fmt.Errorf("%w: empty translation", ErrTranslation)
	}
	return translated, nil
}
