package lingoquiz

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// State is the position of a quiz session in its lifecycle
type State string

const (
	StateNoSession      State = "no_session"
	StateAwaitingAnswer State = "awaiting_answer"
	StateCompleted      State = "completed"
)

// Session tracks progress through one quiz for one topic
type Session struct {
	ID        string
	Topic     string
	Language  string
	Items     []QuizItem
	Index     int
	Score     int
	CreatedAt time.Time
}

// State reports AwaitingAnswer while questions remain, Completed after
func (s *Session) State() State {
	if s.Index >= len(s.Items) {
		return StateCompleted
	}
	return StateAwaitingAnswer
}

// Current returns the question awaiting an answer, or nil when completed
func (s *Session) Current() *QuizItem {
	if s.State() == StateCompleted {
		return nil
	}
	item := s.Items[s.Index]
	item.Options = slices.Clone(item.Options)
	item.OptionsSource = slices.Clone(item.OptionsSource)
	return &item
}

// answer grades choice against the current question and advances.
// question must name the current index.
func (s *Session) answer(question, choice int) (*AnswerResult, error) {
	if s.State() == StateCompleted {
		return nil, ErrSessionCompleted
	}
	if question != s.Index {
		return nil, fmt.Errorf("%w: got %d, current is %d", ErrStaleAnswer, question, s.Index)
	}

	item := s.Items[s.Index]
	if choice < 0 || choice >= len(item.Options) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidChoice, choice)
	}

	correct := choice == item.CorrectIndex
	if correct {
		s.Score++
	}
	s.Index++

	return &AnswerResult{
		Correct:       correct,
		CorrectAnswer: item.Options[item.CorrectIndex],
		Explanation:   item.Explanation,
		Score:         s.Score,
		Answered:      s.Index,
		Total:         len(s.Items),
		Completed:     s.State() == StateCompleted,
	}, nil
}

// SessionView is a read-only snapshot of a session's progress
type SessionView struct {
	ID       string
	Topic    string
	Language string
	State    State
	Index    int
	Score    int
	Total    int
	Current  *QuizItem
}

// Manager owns all live quiz sessions and the score history
type Manager struct {
	generator *QuizGenerator
	scores    ScoreStore

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(generator *QuizGenerator, scores ScoreStore) *Manager {
	return &Manager{
		generator: generator,
		scores:    scores,
		sessions:  make(map[string]*Session),
	}
}

// Start generates a quiz from summary and opens a session on it. A quiz
// with no items completes immediately with a score of 0/0.
func (m *Manager) Start(ctx context.Context, summary, lang, topic string) (string, error) {
	quiz, err := m.generator.GenerateQuiz(ctx, GenerationRequest{
		Summary:  summary,
		Language: lang,
		Topic:    topic,
	})
	if err != nil {
		return "", err
	}

	s := &Session{
		ID:        uuid.NewString(),
		Topic:     topic,
		Language:  lang,
		Items:     quiz.Items,
		CreatedAt: time.Now(),
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	if s.State() == StateCompleted {
		m.recordLocked(ctx, s)
	}

	slog.Info("quiz session started", "session_id", s.ID, "topic", topic, "lang", lang, "questions", len(s.Items))
	return s.ID, nil
}

// CurrentQuestion returns the question awaiting an answer, or nil once the
// session is completed.
func (m *Manager) CurrentQuestion(id string) (*QuizItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s.Current(), nil
}

// StateOf reports the state of session id, NoSession if it does not exist
func (m *Manager) StateOf(id string) State {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return StateNoSession
	}
	return s.State()
}

// Snapshot returns the progress of session id
func (m *Manager) Snapshot(id string) (*SessionView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return &SessionView{
		ID:       s.ID,
		Topic:    s.Topic,
		Language: s.Language,
		State:    s.State(),
		Index:    s.Index,
		Score:    s.Score,
		Total:    len(s.Items),
		Current:  s.Current(),
	}, nil
}

// SubmitChoice answers question (0-based) with the option at position choice
func (m *Manager) SubmitChoice(ctx context.Context, id string, question, choice int) (*AnswerResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}

	result, err := s.answer(question, choice)
	if err != nil {
		return nil, err
	}
	VerboseLog("answer submitted", "session_id", id, "question", question, "correct", result.Correct, "score", result.Score)

	if result.Completed {
		m.recordLocked(ctx, s)
	}
	return result, nil
}

// SubmitAnswer answers question with the displayed option text selected.
// The text is resolved to its position among the translated options and
// graded by position.
func (m *Manager) SubmitAnswer(ctx context.Context, id string, question int, selected string) (*AnswerResult, error) {
	choice, err := m.resolveChoice(id, question, selected)
	if err != nil {
		return nil, err
	}
	return m.SubmitChoice(ctx, id, question, choice)
}

func (m *Manager) resolveChoice(id string, question int, selected string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return 0, ErrSessionNotFound
	}
	if s.State() == StateCompleted {
		return 0, ErrSessionCompleted
	}
	if question != s.Index {
		return 0, fmt.Errorf("%w: got %d, current is %d", ErrStaleAnswer, question, s.Index)
	}
	item := s.Items[s.Index]
	// options can translate to the same text; the correct one wins
	if item.Options[item.CorrectIndex] == selected {
		return item.CorrectIndex, nil
	}
	for i, opt := range item.Options {
		if opt == selected {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidChoice, selected)
}

// Reset discards session id. The score history is kept.
func (m *Manager) Reset(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(m.sessions, id)
	VerboseLog("quiz session reset", "session_id", id)
	return nil
}

// ScoreHistory returns the final scores of completed sessions by topic
func (m *Manager) ScoreHistory(ctx context.Context) (map[string][]int, error) {
	entries, err := m.scores.History(ctx)
	if err != nil {
		return nil, err
	}
	scores, _ := GroupByTopic(entries)
	return scores, nil
}

// History returns every completed session in completion order
func (m *Manager) History(ctx context.Context) ([]ScoreEntry, error) {
	return m.scores.History(ctx)
}

func (m *Manager) recordLocked(ctx context.Context, s *Session) {
	entry := ScoreEntry{
		Topic:       s.Topic,
		Language:    s.Language,
		Score:       s.Score,
		Total:       len(s.Items),
		CompletedAt: time.Now(),
	}
	if err := m.scores.Record(context.WithoutCancel(ctx), entry); err != nil {
		slog.Error("failed to record score", "session_id", s.ID, "topic", s.Topic, "error", err)
		return
	}
	slog.Info("quiz session completed", "session_id", s.ID, "topic", s.Topic, "score", s.Score, "total", len(s.Items))
}
