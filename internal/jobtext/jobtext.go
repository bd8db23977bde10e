// Package jobtext holds the text heuristics shared by catalog
// normalization and the recommendation filters: skill detection against a
// fixed vocabulary and lossy salary-range parsing.
package jobtext

import (
	"regexp"
	"sort"
	"strings"
)

const maxExtractedSkills = 15

// skillVocabulary is the fixed list of technology terms the extractor
// recognizes. Unlisted skills are expected false negatives.
var skillVocabulary = []string{
	"python", "javascript", "typescript", "java", "c++", "c#", "go", "rust",
	"ruby", "php", "swift", "kotlin", "scala", "r",
	"react", "angular", "vue", "node.js", "django", "flask", "fastapi",
	"spring", "rails", "laravel", "express",
	"aws", "azure", "gcp", "docker", "kubernetes", "terraform",
	"postgresql", "mysql", "mongodb", "redis", "elasticsearch",
	"git", "linux", "ci/cd", "agile", "scrum",
	"machine learning", "deep learning", "nlp", "computer vision",
	"data science", "data engineering", "analytics",
	"sql", "nosql", "graphql", "rest api",
	"html", "css", "sass", "webpack",
}

// ExtractSkills scans free text for known skill terms, case-insensitively,
// and returns at most 15 deduplicated matches. Short terms are upper-cased
// (AWS, SQL), longer ones title-cased.
func ExtractSkills(text string) []string {
	if text == "" {
		return nil
	}

	lower := strings.ToLower(text)
	seen := make(map[string]struct{}, maxExtractedSkills)
	var found []string

	for _, skill := range skillVocabulary {
		if !strings.Contains(lower, skill) {
			continue
		}
		name := normalizeSkill(skill)
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		found = append(found, name)
		if len(found) == maxExtractedSkills {
			break
		}
	}
	return found
}

func normalizeSkill(skill string) string {
	if len(skill) <= 3 {
		return strings.ToUpper(skill)
	}
	return titleCase(skill)
}

// titleCase capitalizes the first letter of every alphabetic run, so
// "machine learning" becomes "Machine Learning" and "node.js" "Node.Js".
func titleCase(s string) string {
	out := []byte(s)
	startOfWord := true
	for i, c := range out {
		isLetter := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
		if startOfWord && c >= 'a' && c <= 'z' {
			out[i] = c - 'a' + 'A'
		}
		startOfWord = !isLetter
	}
	return string(out)
}

var salaryNumberRe = regexp.MustCompile(`\d+`)
var salaryThousandsRe = regexp.MustCompile(`(\d+)K`)

// ParseSalary extracts (min, max, currency) from a free-text salary string.
// Numeric tokens of at least 4 digits count as raw figures; <digits>K
// tokens are multiplied by 1000. One figure yields an equal min/max, two or
// more yield (smallest, largest), none yields (nil, nil). The parse is
// intentionally lossy and order-insensitive.
func ParseSalary(salaryText string) (*int, *int, string) {
	currency := "USD"
	if salaryText == "" {
		return nil, nil, currency
	}

	text := strings.ToUpper(salaryText)
	text = strings.ReplaceAll(text, ",", "")
	text = strings.ReplaceAll(text, " ", "")

	switch {
	case strings.Contains(text, "EUR"), strings.Contains(text, "€"):
		currency = "EUR"
	case strings.Contains(text, "GBP"), strings.Contains(text, "£"):
		currency = "GBP"
	}

	set := make(map[int]struct{})
	for _, tok := range salaryNumberRe.FindAllString(text, -1) {
		if len(tok) < 4 {
			continue
		}
		if n, ok := atoiSafe(tok); ok {
			set[n] = struct{}{}
		}
	}
	for _, m := range salaryThousandsRe.FindAllStringSubmatch(text, -1) {
		if n, ok := atoiSafe(m[1]); ok {
			set[n*1000] = struct{}{}
		}
	}

	if len(set) == 0 {
		return nil, nil, currency
	}

	figures := make([]int, 0, len(set))
	for n := range set {
		figures = append(figures, n)
	}
	sort.Ints(figures)

	low, high := figures[0], figures[len(figures)-1]
	return &low, &high, currency
}

func atoiSafe(s string) (int, bool) {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
		if n > 1<<31 {
			return 0, false
		}
	}
	return n, true
}
