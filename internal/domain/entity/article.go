// Package entity defines the core domain entities and validation logic for the application.
// It contains the fundamental business objects — Article, Source, Keyword, Category and
// their links — along with validation rules and domain-specific errors.
package entity

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
	"time"
)

// Article represents a deduplicated, enriched news item ingested from a Source.
type Article struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Content     string    `json:"content"`
	Author      string    `json:"author,omitempty"`
	Source      string    `json:"source"`
	SourceID    string    `json:"source_id"`
	CategoryID  string    `json:"category_id"`
	CountryID   string    `json:"country_id"`
	PublishedAt time.Time `json:"published_at"`
	ImageURL    string    `json:"image_url,omitempty"`
	OriginalURL string    `json:"original_url"`
	RSSGUID     string    `json:"rss_guid"`
	ContentHash string    `json:"content_hash"`

	ViewCount     int64 `json:"view_count"`
	LikeCount     int64 `json:"like_count"`
	BookmarkCount int64 `json:"bookmark_count"`

	QualityScore float64 `json:"quality_score"`
	AIProcessed  bool    `json:"ai_processed"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const maxSlugLength = 80

var (
	slugNonWord    = regexp.MustCompile(`[^a-z0-9]+`)
	slugValidChars = regexp.MustCompile(`^[a-z0-9-]*$`)
)

// Slugify derives a URL-safe slug from a title: lowercased, non-word runs
// collapsed to a single hyphen, clamped to 80 characters, with no leading
// or trailing hyphen. Satisfies invariant P2.
func Slugify(title string) string {
	lower := strings.ToLower(title)
	slug := slugNonWord.ReplaceAllString(lower, "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > maxSlugLength {
		slug = slug[:maxSlugLength]
		slug = strings.TrimRight(slug, "-")
	}
	return slug
}

// ValidSlug reports whether s satisfies invariant P2 without reference to
// any particular title.
func ValidSlug(s string) bool {
	if len(s) > maxSlugLength {
		return false
	}
	if strings.HasPrefix(s, "-") || strings.HasSuffix(s, "-") {
		return false
	}
	return slugValidChars.MatchString(s)
}

// ContentHash computes the forensic content hash for an article: the first
// 16 hex characters of SHA-256(title + content). It is never used as a
// dedup key (see Feed collector invariant I-Dedup in SPEC_FULL.md §4.7).
func ContentHash(title, content string) string {
	sum := sha256.Sum256([]byte(title + content))
	return hex.EncodeToString(sum[:])[:16]
}

// Validate checks Article invariants I-A1 (uniqueness is checked by the
// doc-store adapter, not here), I-A2, and I-A3.
func (a *Article) Validate() error {
	if a.Title == "" {
		return &ValidationError{Field: "title", Message: "title is required"}
	}
	if a.Slug == "" {
		return &ValidationError{Field: "slug", Message: "slug is required"}
	}
	if !ValidSlug(a.Slug) {
		return &ValidationError{Field: "slug", Message: "slug must match ^[a-z0-9-]*$, <=80 chars, no leading/trailing hyphen"}
	}
	if a.AIProcessed && a.QualityScore == 0 {
		return &ValidationError{Field: "quality_score", Message: "ai_processed articles must carry a quality_score (I-A2)"}
	}
	if len(a.Description) > 500 {
		a.Description = a.Description[:500]
	}
	return nil
}
