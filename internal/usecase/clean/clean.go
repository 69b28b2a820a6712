// Package clean implements the HTML cleaner (SPEC_FULL.md §4.2): raw HTML
// in, plain-text content and extracted image URLs out. Grounded on the
// teacher's goquery usage in internal/infra/fetcher/readability.go,
// generalised from Readability's whole-document extraction to the DOM
// surgery and text-conversion steps the spec calls for on its own.
package clean

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const defaultMinInputLength = 100

// structuralSelectors are removed outright regardless of options: chrome
// that is never article content.
var structuralSelectors = "script, style, iframe, nav, footer, header, aside, noscript"

// adClassPattern matches class/id tokens associated with ad and
// distraction elements, mirroring the spec's regex verbatim.
var adClassPattern = regexp.MustCompile(`(?i)ad[-_]?|sponsor|promo|sidebar|social[-_]?share|newsletter|popup`)

var backgroundImageURL = regexp.MustCompile(`url\(\s*['"]?([^'")]+)['"]?\s*\)`)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Options controls cleaner behaviour; zero value uses the spec defaults.
type Options struct {
	RemoveImages     bool `json:"remove_images,omitempty"`
	ExtractImageURLs bool `json:"extract_image_urls,omitempty"`
	MinInputLength   int  `json:"min_input_length,omitempty"`
	RemoveAdElements bool `json:"remove_ad_elements,omitempty"`
}

func (o Options) withDefaults() Options {
	if o.MinInputLength == 0 {
		o.MinInputLength = defaultMinInputLength
	}
	return o
}

// Result is the cleaner's output.
type Result struct {
	Text           string
	Images         []string
	RemovedCharCount int
}

// Clean implements SPEC_FULL.md §4.2's fixed pipeline: extract images,
// strip structural/ad nodes, optionally strip image nodes, convert to
// text via DOM traversal, collapse whitespace, then compress runs of any
// character repeated four or more times down to two.
func Clean(rawHTML string, opts Options) (Result, error) {
	opts = opts.withDefaults()
	if len(rawHTML) < opts.MinInputLength {
		return Result{Text: rawHTML}, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return Result{}, err
	}

	var images []string
	if opts.ExtractImageURLs {
		images = extractImages(doc)
	}

	doc.Find(structuralSelectors).Remove()
	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		if classOrIDMatchesAd(s) {
			s.Remove()
		}
	})

	if opts.RemoveImages {
		doc.Find("img, figure, picture, figcaption").Remove()
	}

	text := extractText(doc)
	removed := len(rawHTML) - len(text)
	if removed < 0 {
		removed = 0
	}

	text = whitespaceRun.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)
	text = compressRepeats(text)

	return Result{Text: text, Images: images, RemovedCharCount: removed}, nil
}

func classOrIDMatchesAd(s *goquery.Selection) bool {
	class, _ := s.Attr("class")
	id, _ := s.Attr("id")
	return adClassPattern.MatchString(class) || adClassPattern.MatchString(id)
}

// extractImages collects image URLs in document order: img[src], the
// first srcset candidate of <source>, and inline background-image URLs.
func extractImages(doc *goquery.Document) []string {
	var images []string
	seen := map[string]struct{}{}
	add := func(u string) {
		u = strings.TrimSpace(u)
		if u == "" {
			return
		}
		if _, ok := seen[u]; ok {
			return
		}
		seen[u] = struct{}{}
		images = append(images, u)
	}

	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		if src, ok := s.Attr("src"); ok {
			add(src)
		}
	})
	doc.Find("source").Each(func(_ int, s *goquery.Selection) {
		if srcset, ok := s.Attr("srcset"); ok {
			add(firstSrcsetCandidate(srcset))
		}
	})
	doc.Find("[style]").Each(func(_ int, s *goquery.Selection) {
		style, _ := s.Attr("style")
		if m := backgroundImageURL.FindStringSubmatch(style); m != nil {
			add(m[1])
		}
	})

	return images
}

func firstSrcsetCandidate(srcset string) string {
	parts := strings.Split(srcset, ",")
	if len(parts) == 0 {
		return ""
	}
	first := strings.TrimSpace(parts[0])
	fields := strings.Fields(first)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// extractText converts the remaining DOM to plain text, preserving a
// single-space separation between block-level elements so adjacent
// paragraphs don't run together.
func extractText(doc *goquery.Document) string {
	var b strings.Builder
	doc.Find("body").Each(func(_ int, s *goquery.Selection) {
		walkText(s, &b)
	})
	if b.Len() == 0 {
		walkText(doc.Selection, &b)
	}
	return b.String()
}

func walkText(s *goquery.Selection, b *strings.Builder) {
	s.Contents().Each(func(_ int, child *goquery.Selection) {
		if goquery.NodeName(child) == "#text" {
			b.WriteString(child.Text())
			return
		}
		walkText(child, b)
		if isBlockElement(goquery.NodeName(child)) {
			b.WriteString(" ")
		}
	})
}

var blockElements = map[string]struct{}{
	"p": {}, "div": {}, "section": {}, "article": {}, "br": {}, "li": {},
	"h1": {}, "h2": {}, "h3": {}, "h4": {}, "h5": {}, "h6": {}, "blockquote": {},
}

func isBlockElement(tag string) bool {
	_, ok := blockElements[tag]
	return ok
}

// compressRepeats compresses any character run of length >= 4 down to
// exactly two occurrences (e.g. "!!!!!!" -> "!!").
func compressRepeats(s string) string {
	var b strings.Builder
	runes := []rune(s)
	i := 0
	for i < len(runes) {
		j := i + 1
		for j < len(runes) && runes[j] == runes[i] {
			j++
		}
		count := j - i
		if count >= 4 {
			b.WriteRune(runes[i])
			b.WriteRune(runes[i])
		} else {
			for k := 0; k < count; k++ {
				b.WriteRune(runes[i])
			}
		}
		i = j
	}
	return b.String()
}
