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
)

// ContentSource looks up encyclopedia articles
type ContentSource interface {
	Search(ctx context.Context, lang, topic string) ([]string, error)
	Summary(ctx context.Context, lang, title string) (*Page, error)
}

// Wikipedia reads articles from the Wikipedia action and REST APIs
type Wikipedia struct {
	endpoint   string // may contain {lang}
	userAgent  string
	limit      int
	httpClient *http.Client
}

// NewWikipedia creates a Wikipedia client. endpoint is the site root,
// e.g. "https://{lang}.wikipedia.org".
func NewWikipedia(endpoint, userAgent string, timeout time.Duration) *Wikipedia {
	return &Wikipedia{
		endpoint:  strings.TrimSuffix(endpoint, "/"),
		userAgent: userAgent,
		limit:     10,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (w *Wikipedia) site(lang string) string {
	if lang == "" {
		lang = "en"
	}
	return strings.ReplaceAll(w.endpoint, "{lang}", lang)
}

// Search returns candidate article titles for topic, best match first
func (w *Wikipedia) Search(ctx context.Context, lang, topic string) ([]string, error) {
	q := url.Values{}
	q.Set("action", "query")
	q.Set("list", "search")
	q.Set("srsearch", topic)
	q.Set("srlimit", fmt.Sprint(w.limit))
	q.Set("format", "json")

	body, status, err := w.get(ctx, w.site(lang)+"/w/api.php?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", topic, err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("search %q: HTTP %d", topic, status)
	}

	var result struct {
		Query struct {
			Search []struct {
				Title string `json:"title"`
			} `json:"search"`
		} `json:"query"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("search %q: parse response: %w", topic, err)
	}

	titles := make([]string, 0, len(result.Query.Search))
	for _, s := range result.Query.Search {
		titles = append(titles, s.Title)
	}
	if len(titles) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, topic)
	}

	VerboseLog("wikipedia search", "lang", lang, "topic", topic, "results", len(titles))
	return titles, nil
}

// Summary returns the plain-text lead section of the article titled title
func (w *Wikipedia) Summary(ctx context.Context, lang, title string) (*Page, error) {
	path := url.PathEscape(strings.ReplaceAll(title, " ", "_"))
	body, status, err := w.get(ctx, w.site(lang)+"/api/rest_v1/page/summary/"+path)
	if err != nil {
		return nil, fmt.Errorf("summary %q: %w", title, err)
	}
	if status == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %q", ErrPageNotFound, title)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("summary %q: HTTP %d", title, status)
	}

	var result struct {
		Type      string `json:"type"`
		Title     string `json:"title"`
		Extract   string `json:"extract"`
		Thumbnail struct {
			Source string `json:"source"`
		} `json:"thumbnail"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("summary %q: parse response: %w", title, err)
	}

	if result.Type == "disambiguation" {
		return nil, fmt.Errorf("%w: %q", ErrPageAmbiguous, title)
	}
	if strings.TrimSpace(result.Extract) == "" {
		return nil, fmt.Errorf("%w: %q has no summary", ErrPageNotFound, title)
	}

	return &Page{
		Title:     result.Title,
		Extract:   result.Extract,
		Thumbnail: result.Thumbnail.Source,
	}, nil
}

func (w *Wikipedia) get(ctx context.Context, rawURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("User-Agent", w.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("read response: %w", err)
	}
	return body, resp.StatusCode, nil
}
