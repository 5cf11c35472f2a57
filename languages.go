package lingoquiz

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Language is a display name with its ISO 639-1 code
type Language struct {
	Name string
	Code string
}

var (
	english = Language{Name: "English", Code: "en"}
	hindi   = Language{Name: "Hindi", Code: "hi"}
	telugu  = Language{Name: "Telugu", Code: "te"}
	tamil   = Language{Name: "Tamil", Code: "ta"}
	kannada = Language{Name: "Kannada", Code: "kn"}
	bengali = Language{Name: "Bengali", Code: "bn"}
)

// AllLanguages is every language any mode supports
var AllLanguages = []Language{english, hindi, telugu, tamil, kannada, bengali}

// Languages offered for summaries and quizzes
var QuizLanguages = []Language{english, telugu, hindi, tamil, kannada}

// Languages offered for stories
var StoryLanguages = []Language{english, hindi, telugu, tamil, bengali}

// Languages offered for sloka translation
var SlokaLanguages = []Language{english, hindi, telugu, tamil, kannada}

// SlokaPronunciation is the voice used to read a verse aloud
const SlokaPronunciation = "hi"

// LookupLanguage normalises code and finds it in set.
// Regional tags are reduced to their base language, so "te-IN" matches Telugu.
func LookupLanguage(set []Language, code string) (Language, error) {
	code = strings.TrimSpace(code)
	tag, err := language.Parse(code)
	if err != nil {
		return Language{}, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, code)
	}
	base, _ := tag.Base()
	for _, l := range set {
		if l.Code == base.String() {
			return l, nil
		}
	}
	return Language{}, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, code)
}
