package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		expected string
	}{
		{"simple title", "Zimbabwe economy grows 5%", "zimbabwe-economy-grows-5"},
		{"punctuation collapses", "Harare: Weather -- Update!", "harare-weather-update"},
		{"already slug-like", "already-a-slug", "already-a-slug"},
		{"leading/trailing punctuation trimmed", "---Leading and Trailing---", "leading-and-trailing"},
		{"empty title", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Slugify(tt.title))
		})
	}
}

func TestSlugify_ClampsTo80Chars(t *testing.T) {
	longTitle := ""
	for i := 0; i < 30; i++ {
		longTitle += "word "
	}

	slug := Slugify(longTitle)
	assert.LessOrEqual(t, len(slug), maxSlugLength)
	assert.True(t, ValidSlug(slug))
}

// TestSlugify_PropertyP2 exercises invariant P2 from SPEC_FULL.md §8 across
// a spread of inputs: every slug is <=80 chars, matches ^[a-z0-9-]*$, and
// never has a leading or trailing hyphen.
func TestSlugify_PropertyP2(t *testing.T) {
	inputs := []string{
		"Zimbabwe economy grows 5%",
		"",
		"!!!",
		"Café in Nairobi",
		"A B C D E F G H I J K L M N O P Q R S T U V W X Y Z a b c d e f g h i j k l m n o p",
	}

	for _, in := range inputs {
		slug := Slugify(in)
		assert.True(t, ValidSlug(slug), "slug %q for input %q should be valid", slug, in)
	}
}

func TestContentHash_Deterministic(t *testing.T) {
	h1 := ContentHash("Title", "Content body")
	h2 := ContentHash("Title", "Content body")
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 16)
}

func TestContentHash_DiffersOnInputChange(t *testing.T) {
	h1 := ContentHash("Title A", "Content")
	h2 := ContentHash("Title B", "Content")
	assert.NotEqual(t, h1, h2)
}

func TestArticle_Validate(t *testing.T) {
	base := func() Article {
		return Article{
			Title:       "Zimbabwe economy grows 5%",
			Slug:        Slugify("Zimbabwe economy grows 5%"),
			PublishedAt: time.Now(),
		}
	}

	t.Run("valid article passes", func(t *testing.T) {
		a := base()
		assert.NoError(t, a.Validate())
	})

	t.Run("missing title fails", func(t *testing.T) {
		a := base()
		a.Title = ""
		assert.Error(t, a.Validate())
	})

	t.Run("missing slug fails", func(t *testing.T) {
		a := base()
		a.Slug = ""
		assert.Error(t, a.Validate())
	})

	t.Run("invalid slug fails", func(t *testing.T) {
		a := base()
		a.Slug = "Not Valid!"
		assert.Error(t, a.Validate())
	})

	t.Run("ai_processed without quality_score fails (I-A2)", func(t *testing.T) {
		a := base()
		a.AIProcessed = true
		a.QualityScore = 0
		assert.Error(t, a.Validate())
	})

	t.Run("ai_processed with quality_score passes (I-A2)", func(t *testing.T) {
		a := base()
		a.AIProcessed = true
		a.QualityScore = 0.7
		assert.NoError(t, a.Validate())
	})

	t.Run("description truncated to 500 chars", func(t *testing.T) {
		a := base()
		long := make([]byte, 600)
		for i := range long {
			long[i] = 'x'
		}
		a.Description = string(long)
		assert.NoError(t, a.Validate())
		assert.Len(t, a.Description, 500)
	})
}

func TestArticle_FieldAssignment(t *testing.T) {
	now := time.Now()
	a := Article{
		ID:          "abc123",
		Title:       "Zimbabwe economy grows 5%",
		Slug:        "zimbabwe-economy-grows-5",
		Source:      "The Herald",
		SourceID:    "src-1",
		CountryID:   "ZW",
		PublishedAt: now,
		RSSGUID:     "guid-1",
		OriginalURL: "https://example.com/a",
	}

	assert.Equal(t, "abc123", a.ID)
	assert.Equal(t, "ZW", a.CountryID)
	assert.Equal(t, now, a.PublishedAt)
	assert.False(t, a.AIProcessed)
}
