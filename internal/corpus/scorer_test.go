package corpus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDomainTerms = []string{"dharma", "karma", "yoga", "धर्म"}

func TestTokenize(t *testing.T) {
	words := Tokenize("what is the tithi today?")
	assert.Equal(t, []string{"what", "the", "tithi", "today"}, words)

	assert.Empty(t, Tokenize(""))
	assert.Empty(t, Tokenize("a an is"))
}

func TestRankExactPhrase(t *testing.T) {
	s := NewScorer(nil, 0)
	fragments := []Fragment{
		{Text: "The festival calendar lists every observance.", SourceFile: "a.txt", Index: 0},
		{Text: "The festival calendar is printed yearly.", SourceFile: "a.txt", Index: 1},
	}

	results := s.Rank("festival calendar lists", fragments)
	require.NotEmpty(t, results)
	// fragment 0 carries the exact phrase and must rank first
	assert.Equal(t, 0, results[0].Index)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestRankWordAndKeyBonuses(t *testing.T) {
	s := NewScorer(nil, 0)
	fragments := []Fragment{
		{Text: "tithi: Ekadashi", SourceFile: "panchang.csv", SourceType: SourceTabular, Index: 0},
		{Text: "the tithi changes daily around sunrise", SourceFile: "notes.txt", SourceType: SourceOpaque, Index: 1},
	}

	results := s.Rank("tithi", fragments)
	require.Len(t, results, 2)

	// key/value provenance outranks a plain word hit:
	// phrase(10) + word(2) + key(5) + colon adjacency(4)
	// vs phrase(10) + word(2)
	assert.Equal(t, 0, results[0].Index)
	assert.Equal(t, 21, results[0].Score)
	assert.Equal(t, 12, results[1].Score)
}

func TestRankPipeAdjacency(t *testing.T) {
	s := NewScorer(nil, 0)
	fragments := []Fragment{
		{Text: "| ekadashi | fasting day |", SourceFile: "table.csv", Index: 0},
		{Text: "ekadashi falls twice a month", SourceFile: "notes.txt", Index: 1},
	}

	results := s.Rank("ekadashi", fragments)
	require.Len(t, results, 2)
	assert.Equal(t, 0, results[0].Index)
	assert.Equal(t, 16, results[0].Score) // phrase(10) + word(2) + pipe adjacency(4)
	assert.Equal(t, 12, results[1].Score)
}

func TestRankDomainTermBoost(t *testing.T) {
	s := NewScorer(testDomainTerms, 0)
	fragments := []Fragment{
		{Text: "dharma guides dharma practice", SourceFile: "a.txt", Index: 0},
		{Text: "the weather was pleasant", SourceFile: "a.txt", Index: 1},
	}

	results := s.Rank("practice", fragments)
	require.Len(t, results, 1)
	assert.Equal(t, 0, results[0].Index)
	// phrase(10) + word(2) + two dharma occurrences (3 each)
	assert.Equal(t, 18, results[0].Score)
}

func TestRankIndicScriptWholeWord(t *testing.T) {
	s := NewScorer(testDomainTerms, 0)
	fragments := []Fragment{
		{Text: "धर्म कर्तव्य का मार्ग है", SourceFile: "hindi.txt", Index: 0},
	}

	results := s.Rank("धर्म", fragments)
	require.Len(t, results, 1)
	// word(2) + exact phrase(10) + domain term(3)
	assert.Equal(t, 15, results[0].Score)
}

func TestRankFiltersZeroScores(t *testing.T) {
	s := NewScorer(nil, 0)
	fragments := []Fragment{
		{Text: "completely unrelated content here", SourceFile: "a.txt", Index: 0},
	}

	assert.Empty(t, s.Rank("moksha liberation", fragments))
	assert.Empty(t, s.Rank("", fragments))
}

func TestRankTopK(t *testing.T) {
	s := NewScorer(nil, 2)
	fragments := []Fragment{
		{Text: "moksha is liberation", SourceFile: "a.txt", Index: 0},
		{Text: "moksha frees the soul", SourceFile: "a.txt", Index: 1},
		{Text: "moksha ends rebirth", SourceFile: "a.txt", Index: 2},
	}

	results := s.Rank("moksha", fragments)
	assert.Len(t, results, 2)
}

func TestRankStableTieOrder(t *testing.T) {
	s := NewScorer(nil, 0)
	fragments := []Fragment{
		{Text: "sandhya vandana at dawn", SourceFile: "a.txt", Index: 0},
		{Text: "sandhya vandana at dusk", SourceFile: "a.txt", Index: 1},
	}

	results := s.Rank("sandhya", fragments)
	require.Len(t, results, 2)
	require.Equal(t, results[0].Score, results[1].Score)
	assert.Equal(t, 0, results[0].Index)
	assert.Equal(t, 1, results[1].Index)
}

func TestRankScoringMonotonicity(t *testing.T) {
	s := NewScorer(testDomainTerms, 0)
	query := "rules of ekadashi fasting"
	base := Fragment{Text: "Fasting has many traditions.", SourceFile: "a.txt", Index: 0}
	boosted := base
	boosted.Text += " The rules of ekadashi fasting are strict."

	baseResults := s.Rank(query, []Fragment{base})
	boostedResults := s.Rank(query, []Fragment{boosted})
	require.NotEmpty(t, boostedResults)

	baseScore := 0
	if len(baseResults) > 0 {
		baseScore = baseResults[0].Score
	}
	assert.GreaterOrEqual(t, boostedResults[0].Score, baseScore)
}
