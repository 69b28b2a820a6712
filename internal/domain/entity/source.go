package entity

import "time"

// HealthStatus classifies a Source's recent fetch reliability.
type HealthStatus string

const (
	HealthHealthy  HealthStatus = "healthy"
	HealthDegraded HealthStatus = "degraded"
	HealthFailing  HealthStatus = "failing"
	HealthCritical HealthStatus = "critical"
)

// CountryPriority orders source processing by the collector's fixed
// country-priority table (SPEC_FULL.md §4.7 phase 1).
var CountryPriority = map[string]int{
	"ZW": 1, "ZA": 2, "KE": 3, "NG": 4, "GH": 5, "TZ": 6,
	"UG": 7, "RW": 8, "ET": 9, "BW": 10, "ZM": 11, "MW": 12,
	"EG": 13, "MA": 14, "NA": 15, "MZ": 16,
}

// TrendingCountries is the fixed allow-list of countries the trending
// engine computes per-scope snapshots for, alongside the global scope.
var TrendingCountries = []string{"ZW", "ZA", "KE", "NG", "GH", "TZ"}

// Source represents a publisher feed tracked by the collector and the
// health manager.
type Source struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	FeedURL  string `json:"feed_url"`
	Country  string `json:"country"` // ISO-3166-alpha2
	Category string `json:"category"`
	Enabled  bool   `json:"enabled"`

	ConsecutiveFailures int        `json:"consecutive_failures"`
	LastSuccessfulFetch *time.Time `json:"last_successful_fetch,omitempty"`
	LastFetchAt         *time.Time `json:"last_fetch_at,omitempty"`
	LastErrorAt         *time.Time `json:"last_error_at,omitempty"`
	LastError           string     `json:"last_error,omitempty"`

	HealthStatus       HealthStatus `json:"health_status"`
	SourceQualityScore float64      `json:"source_quality_score"`
	AvgArticleQuality  float64      `json:"avg_article_quality"`
	AvgEngagement      float64      `json:"avg_engagement"`
	ArticleCount7d     int          `json:"article_count_7d"`
}

// Validate checks the minimal structural requirements of a Source record.
func (s *Source) Validate() error {
	if s.Name == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}
	if err := ValidateURL(s.FeedURL); err != nil {
		return err
	}
	if _, ok := CountryPriority[s.Country]; !ok {
		return &ValidationError{Field: "country", Message: "country must be a recognised ISO-3166-alpha2 code"}
	}
	return nil
}
