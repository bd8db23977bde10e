package jobtext

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractSkills(t *testing.T) {
	skills := ExtractSkills("We need Python and AWS experience with Docker")

	assert.Contains(t, skills, "Python")
	assert.Contains(t, skills, "AWS")
	assert.Contains(t, skills, "Docker")
}

func TestExtractSkillsNormalization(t *testing.T) {
	skills := ExtractSkills("looking for GO and sql, plus machine learning chops")

	assert.Contains(t, skills, "GO")
	assert.Contains(t, skills, "SQL")
	assert.Contains(t, skills, "Machine Learning")
}

func TestExtractSkillsCap(t *testing.T) {
	// A description mentioning every known term still yields at most 15.
	var b strings.Builder
	for _, s := range skillVocabulary {
		b.WriteString(s)
		b.WriteString(" ")
	}

	skills := ExtractSkills(b.String())
	assert.Len(t, skills, 15)
}

func TestExtractSkillsEmptyText(t *testing.T) {
	assert.Empty(t, ExtractSkills(""))
	assert.Empty(t, ExtractSkills("no recognizable technologies here"))
}

func TestParseSalary(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantMin  *int
		wantMax  *int
		currency string
	}{
		{"k range", "$80K - $120K", intPtr(80000), intPtr(120000), "USD"},
		{"single figure", "100000", intPtr(100000), intPtr(100000), "USD"},
		{"pounds with separator", "£45,000", intPtr(45000), intPtr(45000), "GBP"},
		{"euro range", "EUR 50000-70000", intPtr(50000), intPtr(70000), "EUR"},
		{"no figures", "Competitive", nil, nil, "USD"},
		{"empty", "", nil, nil, "USD"},
		{"short numbers ignored", "up to 999 per day", nil, nil, "USD"},
		{"duplicates collapse", "$90K or 90000", intPtr(90000), intPtr(90000), "USD"},
		{"order insensitive", "120000 down from 80000", intPtr(80000), intPtr(120000), "USD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			min, max, currency := ParseSalary(tt.text)
			assert.Equal(t, tt.currency, currency)
			if tt.wantMin == nil {
				assert.Nil(t, min)
				assert.Nil(t, max)
				return
			}
			require.NotNil(t, min)
			require.NotNil(t, max)
			assert.Equal(t, *tt.wantMin, *min)
			assert.Equal(t, *tt.wantMax, *max)
		})
	}
}

func intPtr(n int) *int { return &n }
