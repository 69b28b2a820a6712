// Package quality implements the deterministic article quality scorer
// (SPEC_FULL.md §4.5). It makes no outbound calls and always returns the
// same score for the same input, per invariant P3.
package quality

import (
	"strings"
	"unicode"

	"afrisignal/internal/utils/text"
)

// Breakdown carries the four sub-scores that compose the final quality_score.
type Breakdown struct {
	LengthScore      float64 `json:"length_score"`
	ReadabilityScore float64 `json:"readability_score"`
	TitleScore       float64 `json:"title_score"`
	StructureScore   float64 `json:"structure_score"`
}

// Result is the full output of a Score call.
type Result struct {
	QualityScore float64   `json:"quality_score"`
	WordCount    int       `json:"word_count"`
	Breakdown    Breakdown `json:"breakdown"`
}

const minScorableLength = 100

// Score computes a deterministic quality score in [0,1] for the given
// cleaned content and title. Content shorter than 100 characters always
// scores a fixed 0.3 with a zero breakdown. Length is measured in runes,
// not bytes, so multi-byte scripts (Arabic, Amharic, accented French)
// aren't penalised relative to ASCII content of the same length.
func Score(content, title string) Result {
	if text.CountRunes(content) < minScorableLength {
		return Result{QualityScore: 0.3, WordCount: wordCount(content)}
	}

	words := strings.Fields(content)
	wc := len(words)
	sentenceCount := strings.Count(content, ".") + strings.Count(content, "!") + strings.Count(content, "?")

	lengthScore := min1(float64(wc) / 500)
	readabilityScore := readabilityHeuristic(wc, sentenceCount)
	titleScore := titleScoreFor(title)
	structureScore := structureScoreFor(content, sentenceCount)

	final := lengthScore*0.30 + readabilityScore*0.30 + titleScore*0.15 + structureScore*0.25
	final = round2(clamp01(final))

	return Result{
		QualityScore: final,
		WordCount:    wc,
		Breakdown: Breakdown{
			LengthScore:      round2(lengthScore),
			ReadabilityScore: round2(readabilityScore),
			TitleScore:       round2(titleScore),
			StructureScore:   round2(structureScore),
		},
	}
}

// readabilityHeuristic mirrors SPEC_FULL.md §4.5's heuristic branch: no
// Flesch reading-ease estimator is wired into this Go implementation (see
// DESIGN.md), so the average-sentence-length heuristic is the sole path.
func readabilityHeuristic(wordCount, sentenceCount int) float64 {
	denom := sentenceCount
	if denom < 1 {
		denom = 1
	}
	avgSentenceLen := float64(wordCount) / float64(denom)

	switch {
	case avgSentenceLen >= 10 && avgSentenceLen <= 30:
		return 0.8
	case avgSentenceLen < 10:
		return 0.5
	default:
		return 0.4
	}
}

func titleScoreFor(title string) float64 {
	titleWords := 0
	if title != "" {
		titleWords = len(strings.Fields(title))
	}

	switch {
	case titleWords >= 5 && titleWords <= 15:
		return 1.0
	case titleWords >= 3 && titleWords <= 20:
		return 0.7
	default:
		return 0.4
	}
}

func structureScoreFor(content string, sentenceCount int) float64 {
	score := 0.5

	if sentenceCount >= 3 {
		score += 0.1
	}
	if strings.ContainsRune(content, '"') || strings.ContainsRune(content, '“') {
		score += 0.1
	}
	if strings.Count(content, "\n") >= 2 {
		score += 0.1
	}

	words := strings.Fields(content)
	if len(words) > 200 {
		words = words[:200]
	}
	capitalWords := 0
	for _, w := range words {
		r := []rune(w)
		if len(r) > 1 && unicode.IsUpper(r[0]) {
			capitalWords++
		}
	}
	if capitalWords > 5 {
		score += 0.1
	}

	return min1(score)
}

func wordCount(s string) int {
	if s == "" {
		return 0
	}
	return len(strings.Fields(s))
}

func min1(v float64) float64 {
	if v > 1 {
		return 1
	}
	return v
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}
