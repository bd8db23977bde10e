package resume

import (
	"context"
	"errors"

	pgrepo "github.com/jobpilot/jobpilot/internal/repositories/postgres"
	"github.com/jobpilot/jobpilot/internal/utils"
)

type storeProvider struct {
	resumes pgrepo.ResumeRepository
}

// NewStoreProvider reads résumé text out of the relational store. Rows
// without extracted text count as absent.
func NewStoreProvider(resumes pgrepo.ResumeRepository) TextProvider {
	return &storeProvider{resumes: resumes}
}

func (p *storeProvider) PrimaryText(ctx context.Context, userID uint) (string, bool, error) {
	r, err := p.resumes.GetPrimary(ctx, userID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	if r.RawText == "" {
		return "", false, nil
	}
	return r.RawText, true, nil
}
