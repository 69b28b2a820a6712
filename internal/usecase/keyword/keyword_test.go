package keyword

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"afrisignal/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLLM struct {
	jsonOut string
	err     error
}

func (f *fakeLLM) Complete(ctx context.Context, prompt string) (string, error) { return "", nil }
func (f *fakeLLM) CompleteJSON(ctx context.Context, prompt string, out any) error {
	if f.err != nil {
		return f.err
	}
	return json.Unmarshal([]byte(f.jsonOut), out)
}
func (f *fakeLLM) Embed(ctx context.Context, text string) ([]float32, error) { return nil, nil }

var dictionary = []entity.Keyword{
	{ID: "1", Name: "economy", CategoryID: "business"},
	{ID: "2", Name: "election", CategoryID: "politics"},
	{ID: "3", Name: "drought", CategoryID: "weather"},
}

func TestExtract_LLMPathFiltersLowConfidenceAndUnknown(t *testing.T) {
	llm := &fakeLLM{jsonOut: `{"keywords":[
		{"keyword":"economy","confidence":0.9,"category_id":"business"},
		{"keyword":"economy","confidence":0.4,"category_id":"business"},
		{"keyword":"unknown-term","confidence":0.9,"category_id":"x"}
	]}`}

	matches := Extract(context.Background(), "Zimbabwe economy grows", "content", "ZW", dictionary, llm)

	require.Len(t, matches, 1)
	assert.Equal(t, "economy", matches[0].Keyword)
	assert.Equal(t, "1", matches[0].KeywordID)
}

func TestExtract_FallsBackToSubstringWhenLLMEmpty(t *testing.T) {
	llm := &fakeLLM{jsonOut: `{"keywords":[]}`}

	matches := Extract(context.Background(), "Zimbabwe economy grows amid drought", "content mentions drought too", "ZW", dictionary, llm)

	require.NotEmpty(t, matches)
	for _, m := range matches {
		assert.Equal(t, fallbackConfidence, m.Confidence)
	}
}

func TestExtract_FallsBackToSubstringOnLLMError(t *testing.T) {
	llm := &fakeLLM{err: errors.New("upstream down")}

	matches := Extract(context.Background(), "Election results announced", "content", "KE", dictionary, llm)

	require.NotEmpty(t, matches)
	assert.Equal(t, "election", matches[0].Keyword)
}

func TestExtract_NilLLMGoesStraightToSubstring(t *testing.T) {
	matches := Extract(context.Background(), "drought conditions worsen", "content", "", dictionary, nil)
	require.NotEmpty(t, matches)
	assert.Equal(t, "drought", matches[0].Keyword)
}

func TestExtract_CapsAtEightResults(t *testing.T) {
	var big []entity.Keyword
	for i := 0; i < 30; i++ {
		big = append(big, entity.Keyword{ID: string(rune('a' + i)), Name: "term" + string(rune('a'+i)), CategoryID: "c"})
	}
	content := ""
	for _, k := range big {
		content += k.Name + " "
	}

	matches := Extract(context.Background(), "", content, "", big, nil)
	assert.LessOrEqual(t, len(matches), maxResults)
}

func TestExtract_NoUpstreamFailureAlwaysReturnsSlice(t *testing.T) {
	llm := &fakeLLM{err: errors.New("down")}
	matches := Extract(context.Background(), "nothing matches here", "", "", nil, llm)
	assert.Empty(t, matches)
}
