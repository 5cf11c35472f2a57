package lingoquiz

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitSegments(t *testing.T) {
	assert.Empty(t, splitSegments("   ", 100))
	assert.Equal(t, []string{"short text"}, splitSegments("short  text", 100))
	assert.Equal(t, []string{"aaa bbb", "ccc"}, splitSegments("aaa bbb ccc", 7))
	assert.Equal(t, []string{"abcd", "ef", "gh"}, splitSegments("abcdef gh", 4))

	long := strings.Repeat("నమస్కారం ", 40)
	for _, seg := range splitSegments(long, maxSegment) {
		assert.LessOrEqual(t, utf8.RuneCountInString(seg), maxSegment)
		assert.True(t, utf8.ValidString(seg))
	}
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "abc", truncateRunes("abcdef", 3))
	assert.Equal(t, "నమ", truncateRunes("నమస", 2))
	assert.Equal(t, "ab", truncateRunes("ab", 5))
	assert.Equal(t, "ab", truncateRunes("ab", 0))
}

func TestGoogleSpeechTranslateTTS(t *testing.T) {
	var mu sync.Mutex
	var segments []string
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "tw-ob", q.Get("client"))
		assert.Equal(t, "te", q.Get("tl"))
		mu.Lock()
		segments = append(segments, q.Get("q"))
		mu.Unlock()
		rw.Write([]byte("mp3-" + q.Get("idx") + ";"))
	}))
	defer srv.Close()

	sp := NewGoogleSpeech(SpeechConfig{Endpoint: srv.URL, CloudEndpoint: srv.URL, MaxChars: 5000}, time.Second)
	text := strings.Repeat("word ", 50)
	audio, err := sp.Synthesize(context.Background(), text, "te")
	require.NoError(t, err)
	assert.Equal(t, "audio/mpeg", audio.ContentType)
	assert.Equal(t, "mp3-0;mp3-1;mp3-2;", string(audio.Data))
	assert.Len(t, segments, 3)
}

func TestGoogleSpeechFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		http.Error(rw, "nope", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	sp := NewGoogleSpeech(SpeechConfig{Endpoint: srv.URL, CloudEndpoint: srv.URL, MaxChars: 5000}, time.Second)
	_, err := sp.Synthesize(context.Background(), "hello", "en")
	require.ErrorIs(t, err, ErrSpeech)

	_, err = sp.Synthesize(context.Background(), "  ", "en")
	require.ErrorIs(t, err, ErrSpeech)
}

func TestGoogleSpeechCloud(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.URL.Query().Get("key"))

		var body struct {
			Input struct {
				Text string `json:"text"`
			} `json:"input"`
			Voice struct {
				LanguageCode string `json:"languageCode"`
			} `json:"voice"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "abc", body.Input.Text)
		rw.Write([]byte(`{"audioContent":"` + base64.StdEncoding.EncodeToString([]byte(body.Voice.LanguageCode)) + `"}`))
	}))
	defer srv.Close()

	// max_chars caps the spoken text
	sp := NewGoogleSpeech(SpeechConfig{Endpoint: srv.URL, CloudEndpoint: srv.URL, CloudAPIKey: "secret", MaxChars: 3}, time.Second)

	audio, err := sp.Synthesize(context.Background(), "abcdef", "hi")
	require.NoError(t, err)
	assert.Equal(t, "hi-IN", string(audio.Data))

	audio, err = sp.Synthesize(context.Background(), "abcdef", "en")
	require.NoError(t, err)
	assert.Equal(t, "en-US", string(audio.Data))
}
