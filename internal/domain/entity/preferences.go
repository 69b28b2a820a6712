package entity

// Preferences drives the ranker's personalisation signals. It is not
// independently persisted; callers supply it on each /feed/rank request.
type Preferences struct {
	FollowedSources    []string           `json:"followed_sources,omitempty"`
	FollowedAuthors    []string           `json:"followed_authors,omitempty"`
	FollowedCategories []string           `json:"followed_categories,omitempty"`
	PreferredCountries []string           `json:"preferred_countries,omitempty"`
	PrimaryCountry     string             `json:"primary_country,omitempty"`
	CategoryInterests  map[string]float64 `json:"category_interests,omitempty"`
	RecentlyRead       []string           `json:"recently_read,omitempty"`
}

// NormalizedPreferences is the set-backed form used by the ranker for O(1)
// membership checks, mirroring feed_ranker.py's _normalise_preferences.
type NormalizedPreferences struct {
	FollowedSources    map[string]struct{}
	FollowedAuthors    map[string]struct{}
	FollowedCategories map[string]struct{}
	PreferredCountries map[string]struct{}
	PrimaryCountry     string
	CategoryInterests  map[string]float64
	RecentlyRead       map[string]struct{}
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}

// Normalize converts Preferences into its set-backed form.
func (p Preferences) Normalize() NormalizedPreferences {
	interests := p.CategoryInterests
	if interests == nil {
		interests = map[string]float64{}
	}
	return NormalizedPreferences{
		FollowedSources:    toSet(p.FollowedSources),
		FollowedAuthors:    toSet(p.FollowedAuthors),
		FollowedCategories: toSet(p.FollowedCategories),
		PreferredCountries: toSet(p.PreferredCountries),
		PrimaryCountry:     p.PrimaryCountry,
		CategoryInterests:  interests,
		RecentlyRead:       toSet(p.RecentlyRead),
	}
}
