package lingoquiz

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWikiServer(t *testing.T, handler http.HandlerFunc) *Wikipedia {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewWikipedia(srv.URL, "lingoquiz-test", time.Second)
}

func TestWikipediaSearch(t *testing.T) {
	w := newWikiServer(t, func(rw http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/w/api.php", r.URL.Path)
		assert.Equal(t, "lingoquiz-test", r.Header.Get("User-Agent"))
		q := r.URL.Query()
		assert.Equal(t, "search", q.Get("list"))
		assert.Equal(t, "10", q.Get("srlimit"))

		switch q.Get("srsearch") {
		case "nike":
			rw.Write([]byte(`{"query":{"search":[{"title":"Nike, Inc."},{"title":"Nike (mythology)"}]}}`))
		default:
			rw.Write([]byte(`{"query":{"search":[]}}`))
		}
	})

	titles, err := w.Search(context.Background(), "en", "nike")
	require.NoError(t, err)
	assert.Equal(t, []string{"Nike, Inc.", "Nike (mythology)"}, titles)

	_, err = w.Search(context.Background(), "en", "qwxzv")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestWikipediaSearchHTTPError(t *testing.T) {
	w := newWikiServer(t, func(rw http.ResponseWriter, r *http.Request) {
		http.Error(rw, "busy", http.StatusServiceUnavailable)
	})
	_, err := w.Search(context.Background(), "en", "nike")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestWikipediaSummary(t *testing.T) {
	w := newWikiServer(t, func(rw http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/rest_v1/page/summary/Nike,_Inc.":
			rw.Write([]byte(`{"type":"standard","title":"Nike, Inc.","extract":"Nike is a shoe company.","thumbnail":{"source":"https://img/nike.png"}}`))
		case "/api/rest_v1/page/summary/Mercury":
			rw.Write([]byte(`{"type":"disambiguation","title":"Mercury","extract":"Mercury may refer to:"}`))
		case "/api/rest_v1/page/summary/Blank":
			rw.Write([]byte(`{"type":"standard","title":"Blank","extract":"  "}`))
		default:
			http.NotFound(rw, r)
		}
	})
	ctx := context.Background()

	page, err := w.Summary(ctx, "en", "Nike, Inc.")
	require.NoError(t, err)
	assert.Equal(t, "Nike, Inc.", page.Title)
	assert.Equal(t, "Nike is a shoe company.", page.Extract)
	assert.Equal(t, "https://img/nike.png", page.Thumbnail)

	_, err = w.Summary(ctx, "en", "Mercury")
	require.ErrorIs(t, err, ErrPageAmbiguous)

	_, err = w.Summary(ctx, "en", "Blank")
	require.ErrorIs(t, err, ErrPageNotFound)

	_, err = w.Summary(ctx, "en", "Missing page")
	require.ErrorIs(t, err, ErrPageNotFound)
}

func TestWikipediaLanguageSite(t *testing.T) {
	w := NewWikipedia("https://{lang}.wikipedia.org/", "ua", time.Second)
	assert.Equal(t, "https://te.wikipedia.org", w.site("te"))
	assert.Equal(t, "https://en.wikipedia.org", w.site(""))

	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		rw.Write([]byte(`{"query":{"search":[{"title":"Kalam"}]}}`))
	}))
	defer srv.Close()

	// {lang} may also sit in the path
	w = NewWikipedia(srv.URL+"/{lang}", "ua", time.Second)
	_, err := w.Search(context.Background(), "hi", "kalam")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, "/hi/"), path)
}
