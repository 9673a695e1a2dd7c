package judge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type verdictJSON struct {
	BugFound   bool   `json:"bug_found"`
	Confidence string `json:"confidence"`
}

func TestExtractJSON_FencedBlock(t *testing.T) {
	response := "Here is my verdict:\n```json\n{\"bug_found\": true, \"confidence\": \"high\"}\n```\nDone."
	var v verdictJSON
	require.NoError(t, ExtractJSON(response, &v))
	assert.True(t, v.BugFound)
	assert.Equal(t, "high", v.Confidence)
}

func TestExtractJSON_BareFence(t *testing.T) {
	response := "```\n{\"bug_found\": false, \"confidence\": \"low\"}\n```"
	var v verdictJSON
	require.NoError(t, ExtractJSON(response, &v))
	assert.False(t, v.BugFound)
}

func TestExtractJSON_BracesInProse(t *testing.T) {
	response := `After reviewing the text carefully, my answer is
{"bug_found": true, "confidence": "medium"} based on section 2.`
	var v verdictJSON
	require.NoError(t, ExtractJSON(response, &v))
	assert.True(t, v.BugFound)
	assert.Equal(t, "medium", v.Confidence)
}

func TestExtractJSON_WholeText(t *testing.T) {
	var v verdictJSON
	require.NoError(t, ExtractJSON(`{"bug_found": true}`, &v))
	assert.True(t, v.BugFound)
}

func TestExtractJSON_Empty(t *testing.T) {
	var v verdictJSON
	assert.Error(t, ExtractJSON("", &v))
	assert.Error(t, ExtractJSON("   \n  ", &v))
}

func TestExtractJSON_NoJSON(t *testing.T) {
	var v verdictJSON
	err := ExtractJSON("I could not reach a conclusion, sorry.", &v)
	assert.Error(t, err)
}

func TestResolveMajority(t *testing.T) {
	cases := []struct {
		yes, total int
		want       bool
	}{
		{0, 0, false},
		{1, 1, true},
		{0, 1, false},
		{2, 3, true},
		{1, 3, false},
		{2, 4, false}, // tie resolves to not found
		{3, 4, true},
		{3, 5, true},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ResolveMajority(c.yes, c.total), "yes=%d total=%d", c.yes, c.total)
	}
}
