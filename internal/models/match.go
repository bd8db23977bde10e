package models

type MatchTier string

const (
	TierStrongMatch MatchTier = "strong_match"
	TierGoodMatch   MatchTier = "good_match"
	TierConsider    MatchTier = "consider"
	TierWeakMatch   MatchTier = "weak_match"
)

// MatchResult is the AI-backed assessment of one (user, posting) pair.
// It is derived per query, not persisted.
type MatchResult struct {
	MatchScore     int       `json:"match_score"`
	Recommendation MatchTier `json:"recommendation"`
	MatchReasons   []string  `json:"match_reasons"`
	MatchingSkills []string  `json:"matching_skills"`
	MissingSkills  []string  `json:"missing_skills"`
	SalaryMatch    *bool     `json:"salary_match"`
	LocationMatch  bool      `json:"location_match"`
	ExperienceMatch bool     `json:"experience_match"`
	Summary        string    `json:"summary"`
}

// DefaultMatchResult is the conservative fallback used when the model's
// reply cannot be parsed.
func DefaultMatchResult() *MatchResult {
	return &MatchResult{
		MatchScore:      50,
		Recommendation:  TierConsider,
		MatchReasons:    []string{},
		MatchingSkills:  []string{},
		MissingSkills:   []string{},
		SalaryMatch:     nil,
		LocationMatch:   true,
		ExperienceMatch: true,
		Summary:         "Unable to analyze match.",
	}
}
