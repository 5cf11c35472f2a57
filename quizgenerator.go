package lingoquiz

import (
	"context"
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	// MaxQuestions is the number of sentences that seed questions
	MaxQuestions = 3
	// MaxDistractors is the number of wrong options per question
	MaxDistractors = 3

	sentenceSeparator = ". "
	questionTemplate  = "What is '%s' related to in the context?"
)

var parenthetical = regexp.MustCompile(`\([^)]*\)`)

// QuizGenerator builds multiple choice quizzes from article summaries
type QuizGenerator struct {
	translator Translator

	mu  sync.Mutex
	rng *rand.Rand
}

// NewQuizGenerator creates a generator. A nil rng is replaced with a
// time-seeded source.
func NewQuizGenerator(translator Translator, rng *rand.Rand) *QuizGenerator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &QuizGenerator{
		translator: translator,
		rng:        rng,
	}
}

// GenerateQuiz derives up to MaxQuestions items from req.Summary and
// translates them into req.Language.
func (qg *QuizGenerator) GenerateQuiz(ctx context.Context, req GenerationRequest) (*Quiz, error) {
	sentences := SplitSentences(req.Summary)
	VerboseLog("starting quiz generation", "topic", req.Topic, "lang", req.Language, "sentences", len(sentences))

	seeds := min(MaxQuestions, len(sentences))
	items := make([]QuizItem, 0, seeds)
	for i := 0; i < seeds; i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("quiz generation interrupted: %w", err)
		}
		draft := qg.draftItem(sentences, i, req.Topic)
		items = append(items, qg.translateItem(ctx, draft, req.Language))
	}

	quiz := &Quiz{
		ID:        uuid.NewString(),
		Topic:     req.Topic,
		Language:  req.Language,
		Items:     items,
		CreatedAt: time.Now(),
	}
	VerboseLog("quiz generation complete", "quiz_id", quiz.ID, "items", len(items))
	return quiz, nil
}

// SplitSentences splits a summary on ". ". Blank pieces are dropped, so an
// empty summary has no sentences.
func SplitSentences(summary string) []string {
	var sentences []string
	for _, s := range strings.Split(summary, sentenceSeparator) {
		if strings.TrimSpace(s) != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

// CleanSentence removes parenthesized text and surrounding space
func CleanSentence(s string) string {
	return strings.TrimSpace(parenthetical.ReplaceAllString(s, ""))
}

// Keywords returns the candidate keywords of a cleaned sentence: title-cased
// words longer than 3 characters, or failing that any word longer than 5.
func Keywords(sentence string) []string {
	words := strings.Fields(sentence)

	var titled []string
	for _, w := range words {
		if isTitle(w) && utf8.RuneCountInString(w) > 3 {
			titled = append(titled, w)
		}
	}
	if len(titled) > 0 {
		return titled
	}

	var long []string
	for _, w := range words {
		if utf8.RuneCountInString(w) > 5 {
			long = append(long, w)
		}
	}
	return long
}

// isTitle reports whether every cased run in w starts with an upper case
// letter followed only by lower case letters, and w has at least one
// cased letter.
func isTitle(w string) bool {
	cased, prevCased := false, false
	for _, r := range w {
		switch {
		case unicode.IsUpper(r) || unicode.IsTitle(r):
			if prevCased {
				return false
			}
			prevCased, cased = true, true
		case unicode.IsLower(r):
			if !prevCased {
				return false
			}
			prevCased, cased = true, true
		default:
			prevCased = false
		}
	}
	return cased
}

// draftItem builds the untranslated item for sentences[idx]
func (qg *QuizGenerator) draftItem(sentences []string, idx int, topic string) QuizItem {
	qg.mu.Lock()
	defer qg.mu.Unlock()

	correct := CleanSentence(sentences[idx])

	keyword := topic
	if words := Keywords(correct); len(words) > 0 {
		keyword = words[qg.rng.Intn(len(words))]
	}

	var others []string
	for i, s := range sentences {
		if i == idx {
			continue
		}
		if s = strings.TrimSpace(s); s != correct {
			others = append(others, s)
		}
	}
	n := min(MaxDistractors, len(others))
	qg.rng.Shuffle(len(others), func(i, j int) { others[i], others[j] = others[j], others[i] })

	options := make([]string, 0, n+1)
	options = append(options, correct)
	options = append(options, others[:n]...)
	qg.rng.Shuffle(len(options), func(i, j int) { options[i], options[j] = options[j], options[i] })

	correctIndex := 0
	for i, o := range options {
		if o == correct {
			correctIndex = i
			break
		}
	}

	return QuizItem{
		Question:      fmt.Sprintf(questionTemplate, keyword),
		OptionsSource: options,
		Answer:        correct,
		CorrectIndex:  correctIndex,
	}
}

// translateItem fills the translated fields of a drafted item. Each string
// is translated on its own; failures keep the original text.
func (qg *QuizGenerator) translateItem(ctx context.Context, item QuizItem, lang string) QuizItem {
	item.Question, _ = TranslateOrOriginal(ctx, qg.translator, item.Question, lang)

	item.Options = make([]string, len(item.OptionsSource))
	for i, opt := range item.OptionsSource {
		item.Options[i], _ = TranslateOrOriginal(ctx, qg.translator, opt, lang)
	}

	item.AnswerTranslated, _ = TranslateOrOriginal(ctx, qg.translator, item.Answer, lang)
	item.Explanation = item.AnswerTranslated
	return item
}
