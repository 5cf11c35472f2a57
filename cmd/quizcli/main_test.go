package main

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"lingoquiz"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeContent struct{}

func (fakeContent) Search(_ context.Context, _, topic string) ([]string, error) {
	if topic == "qwxzv" {
		return nil, fmt.Errorf("%w: %q", lingoquiz.ErrNotFound, topic)
	}
	return []string{"Lotus", "Lotus (software)"}, nil
}

func (fakeContent) Summary(_ context.Context, _, title string) (*lingoquiz.Page, error) {
	if title != "Lotus" {
		return nil, fmt.Errorf("%w: %q", lingoquiz.ErrPageAmbiguous, title)
	}
	return &lingoquiz.Page{Title: title, Extract: "Lotus is a flower."}, nil
}

type tagTranslator struct{}

func (tagTranslator) Translate(_ context.Context, text, lang string) (string, error) {
	return "[" + lang + "] " + text, nil
}

func newTestPlayer(t *testing.T, input string) (*player, *bytes.Buffer) {
	t.Helper()

	scores, err := lingoquiz.OpenScoreDB()
	require.NoError(t, err)
	t.Cleanup(func() { scores.Close() })

	generator := lingoquiz.NewQuizGenerator(tagTranslator{}, rand.New(rand.NewSource(1)))
	lang, err := lingoquiz.LookupLanguage(lingoquiz.QuizLanguages, "te")
	require.NoError(t, err)

	var out bytes.Buffer
	return &player{
		content:    fakeContent{},
		translator: tagTranslator{},
		manager:    lingoquiz.NewManager(generator, scores),
		lang:       lang,
		in:         bufio.NewScanner(strings.NewReader(input)),
		out:        &out,
	}, &out
}

func TestPlayerQuiz(t *testing.T) {
	input := strings.Join([]string{
		"lotus", // topic
		"",      // default title
		"y",     // start quiz
		"z",     // not an option
		"a",     // the only option
		"qwxzv", // unknown topic
		"",      // quit
	}, "\n") + "\n"

	p, out := newTestPlayer(t, input)
	p.run(context.Background())

	got := out.String()
	assert.Contains(t, got, "Multilingual Summary & Quiz (Telugu)")
	assert.Contains(t, got, "2) Lotus (software)")
	assert.Contains(t, got, "[te] Lotus is a flower.")
	assert.Contains(t, got, "Question 1/1")
	assert.Contains(t, got, "Please enter one of A")
	assert.Contains(t, got, "✅ Correct!")
	assert.Contains(t, got, "Quiz Completed! Your score: 1/1")
	assert.Contains(t, got, "No articles found for this topic.")
	assert.Contains(t, got, "1. lotus — 🏆 Score: 1/1")
}

func TestPlayerSkipsQuiz(t *testing.T) {
	p, out := newTestPlayer(t, "lotus\n1\nn\n\n")
	p.run(context.Background())

	got := out.String()
	assert.Contains(t, got, "[te] Lotus is a flower.")
	assert.NotContains(t, got, "Question 1/1")
	assert.Contains(t, got, "No quiz history found.")
}

func TestPlayerShowsContentErrors(t *testing.T) {
	p, out := newTestPlayer(t, "lotus\n2\n\n")
	p.run(context.Background())

	assert.Contains(t, out.String(), "Still ambiguous!")
}
