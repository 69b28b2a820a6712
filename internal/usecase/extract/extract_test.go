package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_PrefersArticleBodySelector(t *testing.T) {
	html := `<html><head><title>Zimbabwe Herald | Home</title>
<meta property="og:title" content="Zimbabwe economy grows 5%">
<meta property="og:image" content="https://cdn.example.com/lead.jpg">
<meta name="author" content="Jane Moyo">
</head><body>
<div class="article-body"><p>` + strings.Repeat("Zimbabwe's economy grew steadily this year. ", 10) + `</p></div>
<div class="sidebar">unrelated sidebar text that should be ignored entirely here</div>
</body></html>`

	result, err := Extract(html)
	require.NoError(t, err)

	assert.Equal(t, "Zimbabwe economy grows 5%", result.Title)
	assert.Equal(t, "https://cdn.example.com/lead.jpg", result.ImageURL)
	assert.Equal(t, "Jane Moyo", result.Author)
	assert.Contains(t, result.Content, "economy grew steadily")
	assert.NotContains(t, result.Content, "sidebar")
	assert.Greater(t, result.WordCount, 0)
	assert.GreaterOrEqual(t, result.ReadingTime, 1)
}

func TestExtract_FallsBackToTitleTagWithSeparatorStripped(t *testing.T) {
	html := `<html><head><title>Harare weather update - Daily News</title></head><body><p>` +
		strings.Repeat("Sunny skies expected across the region today. ", 10) + `</p></body></html>`

	result, err := Extract(html)
	require.NoError(t, err)
	assert.Equal(t, "Harare weather update", result.Title)
}

func TestExtract_FallsBackToH1WhenNoTitleTag(t *testing.T) {
	html := `<html><body><h1>Lagos flooding displaces residents</h1><p>` +
		strings.Repeat("Residents were displaced by the flooding. ", 10) + `</p></body></html>`

	result, err := Extract(html)
	require.NoError(t, err)
	assert.Equal(t, "Lagos flooding displaces residents", result.Title)
}

func TestExtract_FallsBackToFirstFiftyParagraphs(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("<html><body>")
	for i := 0; i < 60; i++ {
		sb.WriteString("<p>Paragraph number filler text to pad content length out.</p>")
	}
	sb.WriteString("</body></html>")

	result, err := Extract(sb.String())
	require.NoError(t, err)
	assert.Contains(t, result.Content, "Paragraph number filler")
}

func TestExtract_AuthorPrefixStripped(t *testing.T) {
	html := `<html><body><div class="byline">By Jane Moyo</div><p>` +
		strings.Repeat("Content text here to satisfy minimum length requirements. ", 5) + `</p></body></html>`

	result, err := Extract(html)
	require.NoError(t, err)
	assert.Equal(t, "Jane Moyo", result.Author)
}

func TestExtract_ContentCappedAt50000Chars(t *testing.T) {
	html := `<html><body><div class="article-body">` + strings.Repeat("a ", 40000) + `</div></body></html>`

	result, err := Extract(html)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(result.Content), maxContentLength)
}

func TestStripTitleSeparators(t *testing.T) {
	assert.Equal(t, "Title", stripTitleSeparators("Title | Site Name"))
	assert.Equal(t, "Title", stripTitleSeparators("Title - Site Name"))
	assert.Equal(t, "No separator here", stripTitleSeparators("No separator here"))
}
