package lingoquiz

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// prefixTranslator marks every string with the target language
type prefixTranslator struct {
	mu    sync.Mutex
	calls int
}

func (p *prefixTranslator) Translate(_ context.Context, text, lang string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	return "[" + lang + "] " + text, nil
}

// failingTranslator always fails
type failingTranslator struct{}

func (failingTranslator) Translate(context.Context, string, string) (string, error) {
	return "", fmt.Errorf("%w: service unavailable", ErrTranslation)
}

// unstableTranslator never returns the same output twice for the same input
type unstableTranslator struct {
	n int
}

func (u *unstableTranslator) Translate(_ context.Context, text, _ string) (string, error) {
	u.n++
	return fmt.Sprintf("%s #%d", text, u.n), nil
}

// constTranslator turns every string into the same text
type constTranslator struct {
	text string
}

func (c constTranslator) Translate(context.Context, string, string) (string, error) {
	return c.text, nil
}

// memoryScores is a ScoreStore kept in a slice
type memoryScores struct {
	entries []ScoreEntry
	fail    bool
}

func (m *memoryScores) Record(_ context.Context, e ScoreEntry) error {
	if m.fail {
		return errors.New("disk full")
	}
	m.entries = append(m.entries, e)
	return nil
}

func (m *memoryScores) History(context.Context) ([]ScoreEntry, error) {
	return append([]ScoreEntry(nil), m.entries...), nil
}

const nikeSummary = "Nike is a shoe company. It was founded in 1964. It is based in Oregon."
