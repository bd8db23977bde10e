package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jobpilot/jobpilot/internal/models"
	"github.com/jobpilot/jobpilot/internal/providers/llm"
	"github.com/jobpilot/jobpilot/internal/utils"
)

const (
	matchMaxTokens       = 1000
	coverLetterMaxTokens = 2000
	answersMaxTokens     = 4000

	descriptionExcerpt  = 1500
	coverLetterDescr    = 2000
	requirementsExcerpt = 1000
	resumeExcerpt       = 2000
)

var toneInstructions = map[string]string{
	"professional": "Write in a professional, confident tone.",
	"casual":       "Write in a friendly, conversational tone while remaining professional.",
	"enthusiastic": "Write with energy and enthusiasm about the opportunity.",
	"formal":       "Write in a formal, traditional business letter style.",
}

// QuestionAnswer pairs an application question with its drafted answer.
type QuestionAnswer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// CoverLetterResult is a generated letter with the token spend behind it.
type CoverLetterResult struct {
	Text         string
	InputTokens  int
	OutputTokens int
	Model        string
}

// AIService wraps the language model behind the job-seeking use cases.
// Every method degrades gracefully on malformed model output; only
// transport failures surface as errors.
type AIService interface {
	MatchJob(ctx context.Context, user *models.UserProfile, job *models.JobPosting) (*models.MatchResult, error)
	GenerateCoverLetter(ctx context.Context, user *models.UserProfile, job *models.JobPosting, resumeText, tone, customInstructions string) (*CoverLetterResult, error)
	AnswerQuestions(ctx context.Context, user *models.UserProfile, job *models.JobPosting, questions []string) ([]QuestionAnswer, error)
	Model() string
}

type aiService struct {
	provider llm.Provider
	timeout  time.Duration
	log      *logrus.Logger
}

func NewAIService(provider llm.Provider, timeout time.Duration, log *logrus.Logger) AIService {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if log == nil {
		log = logrus.New()
	}
	return &aiService{provider: provider, timeout: timeout, log: log}
}

func (s *aiService) Model() string { return s.provider.Model() }

func (s *aiService) complete(ctx context.Context, op, system, user string, maxTokens int) (*llm.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.provider.Complete(ctx, system, user, maxTokens)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, utils.E(utils.CodeTimeout, op, "model call timed out", err)
		}
		return nil, utils.E(utils.CodeUnavailable, op, "model call failed", err)
	}
	return res, nil
}

func (s *aiService) MatchJob(ctx context.Context, user *models.UserProfile, job *models.JobPosting) (*models.MatchResult, error) {
	const op = "AIService.MatchJob"

	system := "You are an expert job matching AI. Analyze the candidate profile\n" +
		"against the job posting and provide a detailed match assessment."

	prompt := fmt.Sprintf(`Compare this candidate to the job and provide a JSON response:

CANDIDATE PROFILE:
%s

JOB POSTING:
%s

Respond with JSON:
{
    "match_score": <0-100>,
    "recommendation": "strong_match|good_match|consider|weak_match",
    "match_reasons": ["reason1", "reason2", "reason3"],
    "matching_skills": ["skill1", "skill2"],
    "missing_skills": ["skill1", "skill2"],
    "salary_match": true|false|null,
    "location_match": true|false,
    "experience_match": true|false,
    "summary": "1-2 sentence summary of the match"
}`, candidateProfile(user), jobDetails(job))

	res, err := s.complete(ctx, op, system, prompt, matchMaxTokens)
	if err != nil {
		return nil, err
	}

	salvaged := utils.SalvageJSONObject(res.Text)
	if !salvaged.Parsed() {
		s.log.WithField("reply", truncate(res.Text, 500)).Warn("match reply not parseable, using default")
		return models.DefaultMatchResult(), nil
	}

	result := models.DefaultMatchResult()
	if err := json.Unmarshal(salvaged.Value, result); err != nil {
		s.log.WithError(err).Warn("match reply JSON rejected, using default")
		return models.DefaultMatchResult(), nil
	}
	return result, nil
}

func (s *aiService) GenerateCoverLetter(ctx context.Context, user *models.UserProfile, job *models.JobPosting, resumeText, tone, customInstructions string) (*CoverLetterResult, error) {
	const op = "AIService.GenerateCoverLetter"

	toneLine, ok := toneInstructions[tone]
	if !ok {
		toneLine = toneInstructions["professional"]
	}

	system := fmt.Sprintf(`You are an expert career coach and professional writer.
Write a compelling cover letter that highlights the candidate's relevant experience and skills.
%s
Keep it concise (3-4 paragraphs). Focus on value the candidate brings to the role.`, toneLine)

	userContext := candidateContext(user)
	if resumeText != "" {
		userContext += fmt.Sprintf("\nResume excerpt:\n%s...", truncate(resumeText, resumeExcerpt))
	}

	jobContext := fmt.Sprintf(`
Title: %s
Company: %s
Description: %s...
Requirements: %s
`, job.Title, job.Company,
		orFallback(truncate(job.Description, coverLetterDescr), "Not available"),
		orFallback(truncate(job.Requirements, requirementsExcerpt), "Not specified"))

	var extra string
	if customInstructions != "" {
		extra = "Additional instructions: " + customInstructions + "\n\n"
	}

	prompt := fmt.Sprintf(`Write a cover letter for this application.

CANDIDATE:
%s

JOB:
%s

%sWrite a complete cover letter ready to send. Do not include placeholder text.`, userContext, jobContext, extra)

	res, err := s.complete(ctx, op, system, prompt, coverLetterMaxTokens)
	if err != nil {
		return nil, err
	}
	return &CoverLetterResult{
		Text:         strings.TrimSpace(res.Text),
		InputTokens:  res.InputTokens,
		OutputTokens: res.OutputTokens,
		Model:        s.provider.Model(),
	}, nil
}

func (s *aiService) AnswerQuestions(ctx context.Context, user *models.UserProfile, job *models.JobPosting, questions []string) ([]QuestionAnswer, error) {
	const op = "AIService.AnswerQuestions"

	if len(questions) == 0 {
		return []QuestionAnswer{}, nil
	}

	var sb strings.Builder
	for i, q := range questions {
		fmt.Fprintf(&sb, "Q%d: %s\n", i+1, q)
	}

	system := "You are helping a job candidate answer application questions.\n" +
		"Provide thoughtful, specific answers that highlight relevant experience and skills.\n" +
		"Keep answers concise but complete. Be honest and authentic."

	prompt := fmt.Sprintf(`Answer these application questions for the candidate.

CANDIDATE:
%s

JOB: %s at %s

QUESTIONS:
%s
Respond with JSON array:
[
    {"question": "...", "answer": "..."},
    ...
]`, candidateContext(user), job.Title, job.Company, sb.String())

	res, err := s.complete(ctx, op, system, prompt, answersMaxTokens)
	if err != nil {
		return nil, err
	}

	salvaged := utils.SalvageJSONArray(res.Text)
	if !salvaged.Parsed() {
		s.log.WithField("reply", truncate(res.Text, 500)).Warn("answers reply not parseable")
		return []QuestionAnswer{}, nil
	}

	var answers []QuestionAnswer
	if err := json.Unmarshal(salvaged.Value, &answers); err != nil {
		s.log.WithError(err).Warn("answers reply JSON rejected")
		return []QuestionAnswer{}, nil
	}
	return answers, nil
}

func candidateProfile(user *models.UserProfile) string {
	minSalary, maxSalary := "Not specified", "Not specified"
	if p := user.Preferences; p != nil {
		if p.MinSalary != nil {
			minSalary = fmt.Sprintf("%d", *p.MinSalary)
		}
		if p.MaxSalary != nil {
			maxSalary = fmt.Sprintf("%d", *p.MaxSalary)
		}
	}
	return fmt.Sprintf(`
Title: %s
Experience: %s years
Skills: %s
Location: %s
Remote Preference: %s
Desired Salary: %s - %s
`,
		orFallback(user.CurrentTitle, "Not specified"),
		intOrFallback(user.YearsOfExperience, "Not specified"),
		orFallback(strings.Join(user.SkillNames(), ", "), "Not specified"),
		orFallback(user.Location, "Not specified"),
		orFallback(user.RemotePreference, "Not specified"),
		minSalary, maxSalary)
}

func candidateContext(user *models.UserProfile) string {
	return fmt.Sprintf(`
Name: %s
Title: %s
Experience: %s years
Skills: %s
Summary: %s
`,
		user.FullName(),
		orFallback(user.CurrentTitle, "Job Seeker"),
		intOrFallback(user.YearsOfExperience, "Not specified"),
		orFallback(strings.Join(user.SkillNames(), ", "), "Various"),
		orFallback(user.Summary, "Not provided"))
}

func jobDetails(job *models.JobPosting) string {
	remote := job.RemoteType
	if remote == "" {
		if job.IsRemote {
			remote = "Yes"
		} else {
			remote = "No"
		}
	}
	salary := job.SalaryRange()
	return fmt.Sprintf(`
Title: %s
Company: %s
Location: %s
Remote: %s
Experience Level: %s
Required Skills: %s
Preferred Skills: %s
Salary: %s
Description: %s...
`,
		job.Title, job.Company,
		orFallback(job.Location, "Not specified"),
		remote,
		orFallback(string(job.ExperienceLevel), "Not specified"),
		orFallback(strings.Join(job.RequiredSkills, ", "), "Not specified"),
		orFallback(strings.Join(job.PreferredSkills, ", "), "Not specified"),
		orFallback(salary, "Not specified"),
		orFallback(truncate(job.Description, descriptionExcerpt), "Not available"))
}

func orFallback(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func intOrFallback(n *int, fallback string) string {
	if n == nil {
		return fallback
	}
	return fmt.Sprintf("%d", *n)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
