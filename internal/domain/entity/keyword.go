package entity

import "strings"

// Keyword is a controlled-vocabulary term used by the keyword extractor,
// trending engine and search engine.
type Keyword struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	CategoryID     string  `json:"category_id"`
	RelevanceScore float64 `json:"relevance_score"`
	UsageCount     int64   `json:"usage_count"`
	Enabled        bool    `json:"enabled"`
}

// NormalizedName returns the case-folded form used to enforce
// case-insensitive uniqueness among Keyword names.
func (k *Keyword) NormalizedName() string {
	return strings.ToLower(strings.TrimSpace(k.Name))
}

// Category groups articles and keywords under a display taxonomy.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Emoji       string `json:"emoji,omitempty"`
	Description string `json:"description,omitempty"`
	Enabled     bool   `json:"enabled"`
	Color       string `json:"color,omitempty"`
}

// ArticleKeywordLink is the many-to-many association between an Article
// and a Keyword, carrying the per-link relevance score assigned by the
// keyword extractor.
type ArticleKeywordLink struct {
	ArticleID      string  `json:"article_id"`
	KeywordID      string  `json:"keyword_id"`
	RelevanceScore float64 `json:"relevance_score"`
}
