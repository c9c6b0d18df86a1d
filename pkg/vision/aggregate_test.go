package vision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidates(accepted map[string]int, rejected int) []Candidate {
	var out []Candidate
	for cat, n := range accepted {
		for i := 0; i < n; i++ {
			out = append(out, Candidate{Box: Box{Category: cat}, Accepted: true})
		}
	}
	for i := 0; i < rejected; i++ {
		out = append(out, Candidate{Box: Box{Category: "red"}})
	}
	return out
}

func TestAggregateSingleCategory(t *testing.T) {
	v, ok := Aggregate(candidates(map[string]int{"healthy": 3}, 0))
	require.True(t, ok)
	assert.Equal(t, "healthy", v.Class)
	require.NotNil(t, v.Confidence)
	assert.InDelta(t, 1.0, *v.Confidence, 1e-9)
	assert.Equal(t, map[string]int{"healthy": 3}, v.Counts)
}

func TestAggregateConfidenceIsPopulationShare(t *testing.T) {
	v, ok := Aggregate(candidates(map[string]int{"healthy": 3}, 1))
	require.True(t, ok)
	require.NotNil(t, v.Confidence)
	assert.InDelta(t, 0.75, *v.Confidence, 1e-9)
	assert.Equal(t, 3, v.Counts["healthy"])
	assert.NotContains(t, v.Counts, "red")
}

func TestAggregateMixed(t *testing.T) {
	v, ok := Aggregate(candidates(map[string]int{"healthy": 2, "red": 1}, 0))
	require.True(t, ok)
	assert.Equal(t, MixedClass, v.Class)
	assert.Nil(t, v.Confidence)
	assert.Equal(t, []string{"healthy", "red"}, v.Categories)
}

func TestAggregateNothingAccepted(t *testing.T) {
	_, ok := Aggregate(candidates(nil, 2))
	assert.False(t, ok)

	_, ok = Aggregate(nil)
	assert.False(t, ok)
}

func TestFallbackKeepsRawConfidence(t *testing.T) {
	v := Fallback("chilli_red", 0.42)
	assert.Equal(t, "chilli_red", v.Class)
	require.NotNil(t, v.Confidence)
	assert.Equal(t, 0.42, *v.Confidence)
	assert.Empty(t, v.Counts)
}
