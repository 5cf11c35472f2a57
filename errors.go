package lingoquiz

import "errors"

var (
	// ErrNotFound is returned when a topic search yields no articles
	ErrNotFound = errors.New("no articles found for this topic")
	// ErrPageAmbiguous is returned when a title resolves to a disambiguation page
	ErrPageAmbiguous = errors.New("title is ambiguous")
	// ErrPageNotFound is returned when a title has no readable summary
	ErrPageNotFound = errors.New("page not found")
	// ErrTranslation wraps every translation adapter failure
	ErrTranslation = errors.New("translation failed")
	// ErrSpeech wraps every speech adapter failure
	ErrSpeech = errors.New("speech synthesis failed")

	// ErrSessionNotFound is returned for an unknown or reset session handle
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrSessionCompleted is returned when answering a finished quiz
	ErrSessionCompleted = errors.New("quiz session already completed")
	// ErrStaleAnswer is returned when a submission names a question other than the current one
	ErrStaleAnswer = errors.New("answer does not match the current question")
	// ErrInvalidChoice is returned when the selection is not among the options
	ErrInvalidChoice = errors.New("selected option is not one of the choices")
	// ErrUnsupportedLanguage is returned for a language outside the offered set
	ErrUnsupportedLanguage = errors.New("unsupported language")
)

// UserMessage turns an error into a suggestion that can be shown to the user
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "No articles found for this topic. Try another topic or check the spelling."
	case errors.Is(err, ErrPageAmbiguous):
		return "Still ambiguous! Try selecting a more specific option."
	case errors.Is(err, ErrPageNotFound):
		return "Couldn't fetch the page. Please try another topic or switch to English."
	case errors.Is(err, ErrSpeech):
		return "Audio is unavailable right now; the text is still shown."
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, ErrSessionCompleted):
		return "This quiz is over. Start a new one from a topic."
	case errors.Is(err, ErrStaleAnswer):
		return "That question was already answered."
	case errors.Is(err, ErrInvalidChoice):
		return "Please choose one of the listed options."
	case errors.Is(err, ErrUnsupportedLanguage):
		return "That language is not supported. Please pick one from the list."
	default:
		return "Something went wrong. Please try another topic."
	}
}
