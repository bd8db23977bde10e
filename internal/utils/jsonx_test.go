package utils

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSalvageJSONObject(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		parsed bool
		want   string
	}{
		{
			name:   "bare object",
			raw:    `{"match_score": 85}`,
			parsed: true,
			want:   `{"match_score": 85}`,
		},
		{
			name:   "object wrapped in prose",
			raw:    "Sure, here is the assessment:\n{\"match_score\": 70}\nLet me know if you need more.",
			parsed: true,
			want:   `{"match_score": 70}`,
		},
		{
			name:   "markdown fenced",
			raw:    "```json\n{\"recommendation\": \"good_match\"}\n```",
			parsed: true,
			want:   `{"recommendation": "good_match"}`,
		},
		{
			name:   "nested object",
			raw:    `prefix {"a": {"b": [1, 2, {"c": 3}]}} suffix`,
			parsed: true,
			want:   `{"a": {"b": [1, 2, {"c": 3}]}}`,
		},
		{
			name:   "braces inside string literals",
			raw:    `{"summary": "uses {braces} and a \" quote"}`,
			parsed: true,
			want:   `{"summary": "uses {braces} and a \" quote"}`,
		},
		{
			name:   "no json at all",
			raw:    "I could not produce a structured answer.",
			parsed: false,
		},
		{
			name:   "truncated object",
			raw:    `{"match_score": 85, "recommendation": "strong`,
			parsed: false,
		},
		{
			name:   "empty input",
			raw:    "",
			parsed: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := SalvageJSONObject(tt.raw)
			assert.Equal(t, tt.parsed, out.Parsed())
			assert.Equal(t, tt.raw, out.Raw)
			if tt.parsed {
				assert.JSONEq(t, tt.want, string(out.Value))
			}
		})
	}
}

func TestSalvageJSONObjectSkipsInvalidCandidate(t *testing.T) {
	// The first balanced candidate is not valid JSON; the salvage moves on
	// to the next opening brace.
	raw := `{not json} {"ok": true}`
	out := SalvageJSONObject(raw)
	require.True(t, out.Parsed())
	assert.JSONEq(t, `{"ok": true}`, string(out.Value))
}

func TestSalvageJSONArray(t *testing.T) {
	raw := "Here are the answers:\n[{\"question\": \"Why us?\", \"answer\": \"Because.\"}]"
	out := SalvageJSONArray(raw)
	require.True(t, out.Parsed())

	var answers []map[string]string
	require.NoError(t, json.Unmarshal(out.Value, &answers))
	assert.Len(t, answers, 1)
	assert.Equal(t, "Because.", answers[0]["answer"])
}
