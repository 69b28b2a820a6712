// Package extract implements the web-article extractor (SPEC_FULL.md
// §4.3): prioritised CSS-selector extraction from a full HTML page.
// Grounded on the teacher's goquery/go-readability usage in
// internal/infra/fetcher/readability.go; generalised from whole-document
// Readability extraction to the spec's own selector-priority chains, with
// go-readability kept as the structural fallback when no selector wins.
package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
)

const (
	minSelectorContentLength = 100
	maxFallbackParagraphs    = 50
	maxContentLength         = 50000
	wordsPerMinute           = 200
)

// contentSelectors are tried in order, most specific first; the first
// selector whose combined text exceeds minSelectorContentLength wins.
var contentSelectors = []string{
	"article .entry-content",
	".article-body",
	`[itemprop="articleBody"]`,
	".post-content",
	".story-body",
	"article",
	"main",
	".content",
	"#content",
}

var titleSeparators = []string{" | ", " - ", " – ", " — ", " :: "}

var authorSelectors = []string{
	".byline",
	".author",
	".article-author",
}

var authorPrefix = []string{"By ", "by ", "Written by ", "Author: ", "Author:"}

// Result is the extractor's output.
type Result struct {
	Title        string
	Content      string
	Author       string
	ImageURL     string
	WordCount    int
	ReadingTime  int // minutes, max(1, round(words/200))
}

// Extract parses a full HTML document and extracts the article's title,
// body, author, and lead image using the selector-priority chains from
// SPEC_FULL.md §4.3.
func Extract(rawHTML string) (Result, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return Result{}, err
	}

	content := extractContent(doc)
	if len(content) > maxContentLength {
		content = content[:maxContentLength]
	}

	words := len(strings.Fields(content))
	readingTime := words / wordsPerMinute
	if readingTime < 1 {
		readingTime = 1
	}

	return Result{
		Title:       extractTitle(doc),
		Content:     content,
		Author:      extractAuthor(doc),
		ImageURL:    extractImage(doc),
		WordCount:   words,
		ReadingTime: readingTime,
	}, nil
}

func extractContent(doc *goquery.Document) string {
	for _, sel := range contentSelectors {
		text := strings.TrimSpace(doc.Find(sel).First().Text())
		if len(text) > minSelectorContentLength {
			return normalizeSpace(text)
		}
	}

	var paragraphs []string
	doc.Find("p").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if i >= maxFallbackParagraphs {
			return false
		}
		paragraphs = append(paragraphs, strings.TrimSpace(s.Text()))
		return true
	})
	if joined := strings.TrimSpace(strings.Join(paragraphs, " ")); joined != "" {
		return normalizeSpace(joined)
	}

	if html, err := doc.Html(); err == nil {
		if article, err := readability.FromReader(strings.NewReader(html), nil); err == nil && article.TextContent != "" {
			return normalizeSpace(article.TextContent)
		}
	}
	return ""
}

func extractTitle(doc *goquery.Document) string {
	if og, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok && strings.TrimSpace(og) != "" {
		return strings.TrimSpace(og)
	}
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return stripTitleSeparators(title)
	}
	if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); h1 != "" {
		return h1
	}
	return ""
}

func stripTitleSeparators(title string) string {
	for _, sep := range titleSeparators {
		if idx := strings.Index(title, sep); idx > 0 {
			title = title[:idx]
		}
	}
	return strings.TrimSpace(title)
}

func extractImage(doc *goquery.Document) string {
	if og, ok := doc.Find(`meta[property="og:image"]`).Attr("content"); ok && og != "" {
		return og
	}
	if tw, ok := doc.Find(`meta[name="twitter:image"]`).Attr("content"); ok && tw != "" {
		return tw
	}
	if src, ok := doc.Find(".featured-image img").First().Attr("src"); ok && src != "" {
		return src
	}
	if src, ok := doc.Find("article img").First().Attr("src"); ok && src != "" {
		return src
	}
	if src, ok := doc.Find(".content img, #content img").First().Attr("src"); ok && src != "" {
		return src
	}
	return ""
}

func extractAuthor(doc *goquery.Document) string {
	if name, ok := doc.Find(`meta[name="author"]`).Attr("content"); ok && strings.TrimSpace(name) != "" {
		return strings.TrimSpace(name)
	}
	if name, ok := doc.Find(`meta[property="article:author"]`).Attr("content"); ok && strings.TrimSpace(name) != "" {
		return strings.TrimSpace(name)
	}
	if name := strings.TrimSpace(doc.Find(`[itemprop="author"]`).First().Text()); name != "" {
		return name
	}
	for _, sel := range authorSelectors {
		if name := strings.TrimSpace(doc.Find(sel).First().Text()); name != "" {
			return stripAuthorPrefix(name)
		}
	}
	return ""
}

func stripAuthorPrefix(name string) string {
	for _, prefix := range authorPrefix {
		if strings.HasPrefix(name, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(name, prefix))
		}
	}
	return name
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
