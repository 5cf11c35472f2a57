package lingoquiz

import "time"

// Page is the plain-text summary of one encyclopedia article
type Page struct {
	Title     string `json:"title"`
	Extract   string `json:"extract"`
	Thumbnail string `json:"thumbnail,omitempty"`
}

// Audio is a playable speech clip
type Audio struct {
	Data        []byte
	ContentType string
}

// QuizItem is a single generated multiple choice question.
// Options and OptionsSource are positionally aligned; Answer sits in
// OptionsSource at CorrectIndex.
type QuizItem struct {
	Question         string   `json:"question"`
	Options          []string `json:"options"`
	OptionsSource    []string `json:"options_source"`
	Answer           string   `json:"answer"`
	AnswerTranslated string   `json:"answer_translated"`
	Explanation      string   `json:"explanation"`
	CorrectIndex     int      `json:"correct_index"`
}

// Quiz represents a complete generated quiz with metadata
type Quiz struct {
	ID        string     `json:"id"`
	Topic     string     `json:"topic"`
	Language  string     `json:"language"`
	Items     []QuizItem `json:"items"`
	CreatedAt time.Time  `json:"created_at"`
}

// GenerationRequest represents a request to generate a quiz from a summary
type GenerationRequest struct {
	Summary  string `json:"summary"`
	Language string `json:"language"`
	Topic    string `json:"topic"`
}

// AnswerResult reports the outcome of one answer submission
type AnswerResult struct {
	Correct       bool   `json:"correct"`
	CorrectAnswer string `json:"correct_answer"`
	Explanation   string `json:"explanation"`
	Score         int    `json:"score"`
	Answered      int    `json:"answered"`
	Total         int    `json:"total"`
	Completed     bool   `json:"completed"`
}

// ScoreEntry is one completed session in the score history
type ScoreEntry struct {
	Topic       string    `json:"topic"`
	Language    string    `json:"language"`
	Score       int       `json:"score"`
	Total       int       `json:"total"`
	CompletedAt time.Time `json:"completed_at"`
}
