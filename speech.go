package lingoquiz

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"
)

// Synthesizer turns text into speech in the language identified by lang
type Synthesizer interface {
	Synthesize(ctx context.Context, text, lang string) (*Audio, error)
}

// maxSegment is the longest text the translate_tts endpoint accepts per request
const maxSegment = 100

// GoogleSpeech speaks text with Google Cloud Text-to-Speech when an API
// key is set, and with the public translate_tts endpoint otherwise.
type GoogleSpeech struct {
	endpoint      string
	cloudEndpoint string
	cloudAPIKey   string
	maxChars      int
	httpClient    *http.Client
}

func NewGoogleSpeech(cfg SpeechConfig, timeout time.Duration) *GoogleSpeech {
	return &GoogleSpeech{
		endpoint:      cfg.Endpoint,
		cloudEndpoint: cfg.CloudEndpoint,
		cloudAPIKey:   cfg.CloudAPIKey,
		maxChars:      cfg.MaxChars,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Synthesize returns MP3 audio for text
func (g *GoogleSpeech) Synthesize(ctx context.Context, text, lang string) (*Audio, error) {
	text = truncateRunes(strings.TrimSpace(text), g.maxChars)
	if text == "" {
		return nil, fmt.Errorf("%w: no text to speak", ErrSpeech)
	}

	if g.cloudAPIKey != "" {
		data, err := g.callCloudTTS(ctx, text, lang)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSpeech, err)
		}
		return &Audio{Data: data, ContentType: "audio/mpeg"}, nil
	}

	var buf bytes.Buffer
	segments := splitSegments(text, maxSegment)
	for i, seg := range segments {
		data, err := g.callTranslateTTS(ctx, seg, lang, i, len(segments))
		if err != nil {
			return nil, fmt.Errorf("%w: segment %d: %v", ErrSpeech, i, err)
		}
		buf.Write(data)
	}
	VerboseLog("synthesized speech", "lang", lang, "segments", len(segments), "bytes", buf.Len())
	return &Audio{Data: buf.Bytes(), ContentType: "audio/mpeg"}, nil
}

func (g *GoogleSpeech) callTranslateTTS(ctx context.Context, text, lang string, idx, total int) ([]byte, error) {
	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("q", text)
	q.Set("tl", lang)
	q.Set("client", "tw-ob")
	q.Set("idx", fmt.Sprint(idx))
	q.Set("total", fmt.Sprint(total))
	q.Set("textlen", fmt.Sprint(utf8.RuneCountInString(text)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("TTS request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("TTS error %d", resp.StatusCode)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("empty audio")
	}
	return body, nil
}

func (g *GoogleSpeech) callCloudTTS(ctx context.Context, text, lang string) ([]byte, error) {
	reqBody := map[string]interface{}{
		"input": map[string]string{
			"text": text,
		},
		"voice": map[string]interface{}{
			"languageCode": lang + "-IN",
			"ssmlGender":   "FEMALE",
		},
		"audioConfig": map[string]string{
			"audioEncoding": "MP3",
		},
	}
	if lang == "en" {
		reqBody["voice"].(map[string]interface{})["languageCode"] = "en-US"
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cloudEndpoint+"?key="+url.QueryEscape(g.cloudAPIKey), bytes.NewReader(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("TTS request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("TTS API error %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		AudioContent string `json:"audioContent"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	audio, err := base64.StdEncoding.DecodeString(result.AudioContent)
	if err != nil {
		return nil, fmt.Errorf("decode audio: %w", err)
	}
	return audio, nil
}

// splitSegments breaks text into pieces of at most limit runes, cutting on
// spaces where possible.
func splitSegments(text string, limit int) []string {
	var segments []string
	var cur strings.Builder
	curLen := 0

	flush := func() {
		if curLen > 0 {
			segments = append(segments, cur.String())
			cur.Reset()
			curLen = 0
		}
	}

	for _, word := range strings.Fields(text) {
		for utf8.RuneCountInString(word) > limit {
			flush()
			head := truncateRunes(word, limit)
			segments = append(segments, head)
			word = word[len(head):]
		}
		n := utf8.RuneCountInString(word)
		if curLen > 0 && curLen+1+n > limit {
			flush()
		}
		if curLen > 0 {
			cur.WriteByte(' ')
			curLen++
		}
		cur.WriteString(word)
		curLen += n
	}
	flush()
	return segments
}

func truncateRunes(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
