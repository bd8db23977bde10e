package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jobpilot/jobpilot/internal/jobtext"
	"github.com/jobpilot/jobpilot/internal/models"
	pgrepo "github.com/jobpilot/jobpilot/internal/repositories/postgres"
	"github.com/jobpilot/jobpilot/internal/utils"
)

// Postings older than this are swept out of the active catalog.
const postingMaxAge = 30 * 24 * time.Hour

// CatalogService owns ingestion and upkeep of the posting catalog.
type CatalogService interface {
	UpsertPosting(ctx context.Context, job *models.JobPosting) error
	GetOrCreateSource(ctx context.Context, name, baseURL, scraperType string) (*models.JobSource, error)
	MarkSourceScraped(ctx context.Context, source *models.JobSource) error
	ExpireStalePostings(ctx context.Context) (int64, error)
}

type catalogService struct {
	jobs    pgrepo.JobRepository
	sources pgrepo.JobSourceRepository
}

func NewCatalogService(jobs pgrepo.JobRepository, sources pgrepo.JobSourceRepository) CatalogService {
	return &catalogService{jobs: jobs, sources: sources}
}

// UpsertPosting normalizes scraper output and writes it through. Skills
// are extracted from the description when the source sent none, and
// structured salary bounds are parsed from the raw salary text.
func (s *catalogService) UpsertPosting(ctx context.Context, job *models.JobPosting) error {
	const op = "CatalogService.UpsertPosting"

	if job.SourceID == 0 || strings.TrimSpace(job.ExternalID) == "" {
		return utils.E(utils.CodeInvalidArgument, op, "source_id and external_id are required", nil)
	}
	if strings.TrimSpace(job.Title) == "" {
		return utils.E(utils.CodeInvalidArgument, op, "title is required", nil)
	}

	if len(job.RequiredSkills) == 0 && job.Description != "" {
		job.RequiredSkills = jobtext.ExtractSkills(job.Description)
	}
	if job.SalaryMin == nil && job.SalaryMax == nil && job.SalaryText != "" {
		min, max, currency := jobtext.ParseSalary(job.SalaryText)
		job.SalaryMin = min
		job.SalaryMax = max
		if job.SalaryCurrency == "" {
			job.SalaryCurrency = currency
		}
	}
	if job.Status == "" {
		job.Status = models.JobStatusActive
	}

	now := time.Now().UTC()
	job.ScrapedAt = &now

	if err := s.jobs.Upsert(ctx, job); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to upsert posting", err)
	}
	return nil
}

func (s *catalogService) GetOrCreateSource(ctx context.Context, name, baseURL, scraperType string) (*models.JobSource, error) {
	const op = "CatalogService.GetOrCreateSource"

	if strings.TrimSpace(name) == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "source name is required", nil)
	}

	source, err := s.sources.GetByName(ctx, name)
	if err == nil {
		return source, nil
	}
	if !errors.Is(err, utils.ErrNotFound) {
		return nil, utils.E(utils.CodeInternal, op, "failed to look up source", err)
	}

	source = &models.JobSource{
		Name:        name,
		BaseURL:     baseURL,
		ScraperType: scraperType,
		IsActive:    true,
	}
	if err := s.sources.Create(ctx, source); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create source", err)
	}
	return source, nil
}

func (s *catalogService) MarkSourceScraped(ctx context.Context, source *models.JobSource) error {
	const op = "CatalogService.MarkSourceScraped"

	now := time.Now().UTC()
	source.LastScrapedAt = &now
	if err := s.sources.Save(ctx, source); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to update source", err)
	}
	return nil
}

// ExpireStalePostings flips active postings posted before the retention
// window to expired and reports how many were affected.
func (s *catalogService) ExpireStalePostings(ctx context.Context) (int64, error) {
	const op = "CatalogService.ExpireStalePostings"

	cutoff := time.Now().UTC().Add(-postingMaxAge)
	n, err := s.jobs.ExpireOlderThan(ctx, cutoff)
	if err != nil {
		return 0, utils.E(utils.CodeInternal, op, "failed to expire postings", err)
	}
	return n, nil
}
