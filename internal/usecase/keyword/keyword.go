// Package keyword implements the keyword extractor (SPEC_FULL.md §4.4):
// an LLM-first, dictionary-constrained extraction with a substring-match
// fallback. Grounded on the teacher's internal/infra/summarizer/claude.go
// prompt-building and fail-soft posture, adapted from free-text
// summarization to a JSON-only, dictionary-validated extraction via
// port.LlmGateway.CompleteJSON.
package keyword

import (
	"context"
	"strings"

	"afrisignal/internal/domain/entity"
	"afrisignal/internal/domain/port"
)

const (
	maxResults          = 8
	minConfidence       = 0.5
	fallbackConfidence  = 0.7
	fallbackDictionaryN = 20
)

// languageHints maps a country code to the language-hint text embedded in
// the LLM prompt, mirroring SPEC_FULL.md §4.4's table.
var languageHints = map[string]string{
	"ZW": "Shona/Ndebele",
	"KE": "Swahili",
	"TZ": "Swahili",
	"MZ": "Portuguese",
	"EG": "Arabic/French",
	"MA": "Arabic/French",
	"GH": "Twi/Akan",
	"RW": "Kinyarwanda/French",
	"ET": "Amharic",
}

// Match is a single extracted keyword with its confidence and category.
// KeywordID is the dictionary entry's ID, carried through so callers can
// persist article/keyword associations without a second dictionary
// lookup.
type Match struct {
	KeywordID  string  `json:"keyword_id"`
	Keyword    string  `json:"keyword"`
	Confidence float64 `json:"confidence"`
	CategoryID string  `json:"category_id"`
}

type llmResponse struct {
	Keywords []Match `json:"keywords"`
}

// Extract produces up to 8 keyword matches drawn from dictionary, trying
// the LLM path first and falling back to substring matching. Always
// returns a (possibly empty) result; never an error to the caller.
func Extract(ctx context.Context, title, content, country string, dictionary []entity.Keyword, llm port.LlmGateway) []Match {
	byName := indexByName(dictionary)

	if llm != nil {
		if matches := extractViaLLM(ctx, title, content, country, byName, llm); len(matches) > 0 {
			return matches
		}
	}

	return extractViaSubstring(title, content, dictionary)
}

func indexByName(dictionary []entity.Keyword) map[string]entity.Keyword {
	m := make(map[string]entity.Keyword, len(dictionary))
	for _, k := range dictionary {
		m[strings.ToLower(k.Name)] = k
	}
	return m
}

func extractViaLLM(ctx context.Context, title, content, country string, byName map[string]entity.Keyword, llm port.LlmGateway) []Match {
	prompt := buildPrompt(title, content, country, byName)

	var resp llmResponse
	if err := llm.CompleteJSON(ctx, prompt, &resp); err != nil {
		return nil
	}

	var matches []Match
	for _, m := range resp.Keywords {
		if len(matches) >= maxResults {
			break
		}
		entry, ok := byName[strings.ToLower(m.Keyword)]
		if !ok || m.Confidence <= minConfidence {
			continue
		}
		matches = append(matches, Match{KeywordID: entry.ID, Keyword: entry.Name, Confidence: m.Confidence, CategoryID: entry.CategoryID})
	}
	return matches
}

func buildPrompt(title, content, country string, byName map[string]entity.Keyword) string {
	var names []string
	for name := range byName {
		names = append(names, name)
	}

	hint := languageHints[country]
	var b strings.Builder
	b.WriteString("Extract up to 8 relevant keywords from the following article, using only terms from the provided dictionary.\n")
	if country != "" {
		b.WriteString("Country: " + country + "\n")
	}
	if hint != "" {
		b.WriteString("Language hint: " + hint + "\n")
	}
	b.WriteString("Dictionary: " + strings.Join(names, ", ") + "\n")
	b.WriteString("Title: " + title + "\n")
	b.WriteString("Content: " + content + "\n")
	b.WriteString(`Respond with JSON only: {"keywords":[{"keyword":"...","confidence":0.0,"category_id":"..."}]}`)
	return b.String()
}

func extractViaSubstring(title, content string, dictionary []entity.Keyword) []Match {
	haystack := strings.ToLower(title + " " + content)

	limit := fallbackDictionaryN
	if limit > len(dictionary) {
		limit = len(dictionary)
	}

	var matches []Match
	for _, k := range dictionary[:limit] {
		if len(matches) >= maxResults {
			break
		}
		if strings.Contains(haystack, strings.ToLower(k.Name)) {
			matches = append(matches, Match{KeywordID: k.ID, Keyword: k.Name, Confidence: fallbackConfidence, CategoryID: k.CategoryID})
		}
	}
	return matches
}
