package lingoquiz

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// AgeGroup bounds the length and font size of a story
type AgeGroup struct {
	Name     string
	MaxWords int
	FontSize int
}

var AgeGroups = []AgeGroup{
	{Name: "5-8 years", MaxWords: 800, FontSize: 20},
	{Name: "9-12 years", MaxWords: 2000, FontSize: 18},
	{Name: "13+ years", MaxWords: 4000, FontSize: 16},
}

// Figure is a historical person a story can be told about
type Figure struct {
	Name string
	Kind string
}

// StoryCategory groups figures for selection
type StoryCategory struct {
	Name    string
	Figures []Figure
}

var StoryCatalog = []StoryCategory{
	{Name: "Kings & Queens", Figures: []Figure{
		{Name: "Krishnadevaraya", Kind: "Vijayanagara king"},
		{Name: "Rani Lakshmibai", Kind: "Queen of Jhansi"},
		{Name: "Raja Raja Chola", Kind: "Great Chola emperor"},
	}},
	{Name: "Freedom Fighters", Figures: []Figure{
		{Name: "Subhas Chandra Bose", Kind: "Netaji"},
		{Name: "Bhagat Singh", Kind: "Revolutionary"},
		{Name: "Sarojini Naidu", Kind: "Poet and activist"},
	}},
	{Name: "Scientists & Scholars", Figures: []Figure{
		{Name: "Aryabhata", Kind: "Ancient mathematician"},
		{Name: "C. V. Raman", Kind: "Nobel Prize physicist"},
		{Name: "Sushruta", Kind: "Ancient surgeon"},
	}},
}

// LookupAgeGroup finds an age group by name
func LookupAgeGroup(name string) (AgeGroup, bool) {
	for _, g := range AgeGroups {
		if g.Name == name {
			return g, true
		}
	}
	return AgeGroup{}, false
}

// LookupFigure finds a figure by name across all categories
func LookupFigure(name string) (Figure, bool) {
	for _, c := range StoryCatalog {
		for _, f := range c.Figures {
			if f.Name == name {
				return f, true
			}
		}
	}
	return Figure{}, false
}

var (
	citationMarker = regexp.MustCompile(`\[[0-9]+\]`)
	whitespaceRun  = regexp.MustCompile(`\s+`)
)

// CleanContent removes [n] citation markers and collapses whitespace
func CleanContent(text string) string {
	text = citationMarker.ReplaceAllString(text, "")
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
}

// Story is an article retold for children
type Story struct {
	Heading  string
	Body     string
	Language string
	Fallback bool // told in English because the chosen language had no article
	FontSize int
	Image    string // picture of the figure, empty when the article has none
}

// FormatStory frames content as a story, truncated to the age group's word budget
func FormatStory(content string, figure Figure, age AgeGroup) *Story {
	words := strings.Fields(content)
	if len(words) == 0 {
		return nil
	}
	if len(words) > age.MaxWords {
		words = words[:age.MaxWords]
	}

	body := fmt.Sprintf("Long ago in India... %s And that's how %s became legendary in Indian history!",
		strings.Join(words, " "), figure.Name)

	return &Story{
		Heading:  fmt.Sprintf("🌟 The Amazing Story of %s (%s) 🌟", figure.Name, figure.Kind),
		Body:     CleanContent(body),
		FontSize: age.FontSize,
	}
}

// FetchStory reads the best-matching article for figure in lang. When that
// fails for a language other than English it retries in English.
func FetchStory(ctx context.Context, src ContentSource, figure Figure, lang string, age AgeGroup) (*Story, error) {
	page, err := fetchLead(ctx, src, lang, figure.Name)
	fallback := false
	if err != nil && lang != english.Code {
		VerboseLog("story not found, trying English", "figure", figure.Name, "lang", lang, "error", err)
		page, err = fetchLead(ctx, src, english.Code, figure.Name)
		fallback = true
	}
	if err != nil {
		return nil, err
	}

	story := FormatStory(page.Extract, figure, age)
	if story == nil {
		return nil, fmt.Errorf("%w: %q has no text", ErrPageNotFound, figure.Name)
	}
	story.Image = page.Thumbnail
	story.Language = lang
	if fallback {
		story.Language = english.Code
	}
	story.Fallback = fallback
	return story, nil
}

func fetchLead(ctx context.Context, src ContentSource, lang, title string) (*Page, error) {
	titles, err := src.Search(ctx, lang, title)
	if err != nil {
		return nil, err
	}
	if len(titles) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, title)
	}
	return src.Summary(ctx, lang, titles[0])
}
