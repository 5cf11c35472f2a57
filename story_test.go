package lingoquiz

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource serves pages keyed by "lang/title"
type fakeSource struct {
	pages     map[string]string
	thumbnail string
	searched  []string
}

func (f *fakeSource) Search(_ context.Context, lang, topic string) ([]string, error) {
	f.searched = append(f.searched, lang)
	if _, ok := f.pages[lang+"/"+topic]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, topic)
	}
	return []string{topic}, nil
}

func (f *fakeSource) Summary(_ context.Context, lang, title string) (*Page, error) {
	extract, ok := f.pages[lang+"/"+title]
	if !ok {
		return nil, ErrPageNotFound
	}
	return &Page{Title: title, Extract: extract, Thumbnail: f.thumbnail}, nil
}

func TestCleanContent(t *testing.T) {
	assert.Equal(t, "He was born in 476 CE. He wrote books.",
		CleanContent("He was born in 476 CE.[1]  He wrote\n books.[23]"))
	assert.Equal(t, "keeps [a] notes", CleanContent("keeps [a] notes"))
	assert.Equal(t, "", CleanContent(" \t\n"))
}

func TestFormatStory(t *testing.T) {
	aryabhata, ok := LookupFigure("Aryabhata")
	require.True(t, ok)
	age, ok := LookupAgeGroup("5-8 years")
	require.True(t, ok)

	content := strings.Repeat("zero ", 1000)
	story := FormatStory(content, aryabhata, age)
	require.NotNil(t, story)

	// opening words, truncated content, closing sentence
	assert.Len(t, strings.Fields(story.Body), 4+age.MaxWords+9)
	assert.True(t, strings.HasPrefix(story.Body, "Long ago in India... zero"))
	assert.True(t, strings.HasSuffix(story.Body, "And that's how Aryabhata became legendary in Indian history!"))
	assert.Equal(t, "🌟 The Amazing Story of Aryabhata (Ancient mathematician) 🌟", story.Heading)
	assert.Equal(t, 20, story.FontSize)

	assert.Nil(t, FormatStory("   ", aryabhata, age))
}

func TestFormatStoryShortContentKept(t *testing.T) {
	figure := Figure{Name: "Sushruta", Kind: "Ancient surgeon"}
	age, _ := LookupAgeGroup("13+ years")
	story := FormatStory("Sushruta was a physician.[4]", figure, age)
	require.NotNil(t, story)
	assert.Equal(t, "Long ago in India... Sushruta was a physician. And that's how Sushruta became legendary in Indian history!", story.Body)
}

func TestLookups(t *testing.T) {
	_, ok := LookupFigure("Nobody")
	assert.False(t, ok)
	_, ok = LookupAgeGroup("1-2 years")
	assert.False(t, ok)
	for _, c := range StoryCatalog {
		assert.NotEmpty(t, c.Figures, c.Name)
	}
}

func TestFetchStory(t *testing.T) {
	ctx := context.Background()
	figure, _ := LookupFigure("Bhagat Singh")
	age, _ := LookupAgeGroup("9-12 years")

	src := &fakeSource{pages: map[string]string{
		"hi/Bhagat Singh": "भगत सिंह एक क्रांतिकारी थे।",
		"en/Bhagat Singh": "Bhagat Singh was a revolutionary.",
	}, thumbnail: "https://img/bhagat.jpg"}
	story, err := FetchStory(ctx, src, figure, "hi", age)
	require.NoError(t, err)
	assert.Equal(t, "https://img/bhagat.jpg", story.Image)
	assert.False(t, story.Fallback)
	assert.Equal(t, "hi", story.Language)
	assert.Contains(t, story.Body, "क्रांतिकारी")
}

func TestFetchStoryFallsBackToEnglish(t *testing.T) {
	ctx := context.Background()
	figure, _ := LookupFigure("Bhagat Singh")
	age, _ := LookupAgeGroup("9-12 years")

	src := &fakeSource{pages: map[string]string{
		"en/Bhagat Singh": "Bhagat Singh was a revolutionary.",
	}}
	story, err := FetchStory(ctx, src, figure, "bn", age)
	require.NoError(t, err)
	assert.True(t, story.Fallback)
	assert.Empty(t, story.Image)
	assert.Equal(t, "en", story.Language)
	assert.Equal(t, []string{"bn", "en"}, src.searched)

	_, err = FetchStory(ctx, &fakeSource{}, figure, "ta", age)
	require.ErrorIs(t, err, ErrNotFound)

	// English failures are not retried
	src = &fakeSource{}
	_, err = FetchStory(ctx, src, figure, "en", age)
	require.Error(t, err)
	assert.Equal(t, []string{"en"}, src.searched)
}
