// Package feedparse implements the feed parser (SPEC_FULL.md §4.1): raw
// feed bytes in, canonical article records out. Grounded on the teacher's
// internal/infra/scraper/rss.go gofeed usage, generalised to parse bytes
// already fetched by the collector rather than fetching itself, with the
// image-selection priority chain and slug derivation from SPEC_FULL.md
// §4.1 layered on top.
package feedparse

import (
	"bytes"
	"strings"
	"time"

	"afrisignal/internal/domain/entity"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"github.com/mmcdole/gofeed/extensions"
)

const maxItems = 20

// Item is a single canonical article record produced by parsing a feed.
type Item struct {
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	Description string    `json:"description"`
	Content     string    `json:"content"`
	Author      string    `json:"author,omitempty"`
	PublishedAt time.Time `json:"published_at"`
	GUID        string    `json:"guid,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	Slug        string    `json:"slug"`
}

// Result is the output of parsing one feed document.
type Result struct {
	Items         []Item
	FeedTitle     string
	ItemCount     int // original number of entries before the maxItems clamp
}

// blockedImageDomains is a compile-time block-list of known ad/tracker
// domains that must never be promoted to an article's image_url.
var blockedImageDomains = map[string]struct{}{
	"doubleclick.net":  {},
	"googlesyndication.com": {},
	"pixel.wp.com":     {},
	"trackers.example.com": {},
}

// Parse parses raw feed bytes (RSS 2.0, Atom 1.0, or RDF/RSS 1.0) into up
// to 20 canonical article records. source is metadata about the feed's
// origin (country/category tags applied by the caller after parsing).
// Returns *entity.ParseError when the feed is malformed and yields zero
// entries; a "bozo" feed with at least one entry is accepted.
func Parse(raw []byte, sourceURL string) (Result, error) {
	parser := gofeed.NewParser()
	feed, err := parser.Parse(bytes.NewReader(raw))
	if err != nil {
		return Result{}, &entity.ParseError{Source: sourceURL, Reason: "malformed feed XML", Err: err}
	}

	if len(feed.Items) == 0 {
		return Result{}, &entity.ParseError{Source: sourceURL, Reason: "feed contains zero entries"}
	}

	total := len(feed.Items)
	items := feed.Items
	if len(items) > maxItems {
		items = items[:maxItems]
	}

	result := Result{FeedTitle: feed.Title, ItemCount: total}
	for _, it := range items {
		result.Items = append(result.Items, convertItem(it))
	}
	return result, nil
}

func convertItem(it *gofeed.Item) Item {
	title := it.Title
	link := it.Link
	if link == "" {
		link = it.GUID
	}

	content := it.Content
	if content == "" {
		content = it.Description
	}

	publishedAt := time.Now()
	if it.PublishedParsed != nil {
		publishedAt = *it.PublishedParsed
	} else if it.UpdatedParsed != nil {
		publishedAt = *it.UpdatedParsed
	}

	author := ""
	if it.Author != nil {
		author = it.Author.Name
	} else if len(it.Authors) > 0 {
		author = it.Authors[0].Name
	}

	return Item{
		Title:       title,
		Link:        link,
		Description: it.Description,
		Content:     content,
		Author:      author,
		PublishedAt: publishedAt,
		GUID:        it.GUID,
		ImageURL:    selectImage(it),
		Slug:        entity.Slugify(title),
	}
}

// selectImage implements the priority chain from SPEC_FULL.md §4.1:
// media:thumbnail -> media:content[type~=image] -> enclosure[type~=image]
// -> first <img> found via DOM parse of description/content.
func selectImage(it *gofeed.Item) string {
	if it.Image != nil && it.Image.URL != "" {
		if url := sanitizeImageURL(it.Image.URL); url != "" {
			return url
		}
	}

	if media, ok := it.Extensions["media"]; ok {
		if url := firstMediaURL(media["thumbnail"]); url != "" {
			return url
		}
		if url := firstMediaURLWithImageType(media["content"]); url != "" {
			return url
		}
	}

	for _, enc := range it.Enclosures {
		if enc.URL != "" && strings.Contains(strings.ToLower(enc.Type), "image") {
			if url := sanitizeImageURL(enc.URL); url != "" {
				return url
			}
		}
	}

	if url := firstImgInHTML(it.Description); url != "" {
		return url
	}
	if url := firstImgInHTML(it.Content); url != "" {
		return url
	}

	return ""
}

func firstMediaURL(exts []ext.Extension) string {
	for _, e := range exts {
		if url, ok := e.Attrs["url"]; ok {
			if sanitized := sanitizeImageURL(url); sanitized != "" {
				return sanitized
			}
		}
	}
	return ""
}

func firstMediaURLWithImageType(exts []ext.Extension) string {
	for _, e := range exts {
		typ := e.Attrs["type"]
		if typ != "" && !strings.Contains(strings.ToLower(typ), "image") {
			continue
		}
		if url, ok := e.Attrs["url"]; ok {
			if sanitized := sanitizeImageURL(url); sanitized != "" {
				return sanitized
			}
		}
	}
	return ""
}

func firstImgInHTML(html string) string {
	if html == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	src, ok := doc.Find("img").First().Attr("src")
	if !ok {
		return ""
	}
	return sanitizeImageURL(src)
}

// sanitizeImageURL promotes protocol-relative URLs to https:, rejects
// non-http(s) schemes, and rejects known ad/tracker domains.
func sanitizeImageURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(raw, "//") {
		raw = "https:" + raw
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return ""
	}
	for domain := range blockedImageDomains {
		if strings.Contains(raw, domain) {
			return ""
		}
	}
	return raw
}
