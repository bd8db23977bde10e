package workers

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type expirerStub struct {
	n     int64
	err   error
	calls int
}

func (s *expirerStub) ExpireStalePostings(context.Context) (int64, error) {
	s.calls++
	return s.n, s.err
}

type purgerStub struct {
	n     int64
	err   error
	calls int
}

func (s *purgerStub) PurgeExpiredDrafts(context.Context) (int64, error) {
	s.calls++
	return s.n, s.err
}

func TestSweepRunsPostingAndDraftSweeps(t *testing.T) {
	expirer := &expirerStub{n: 2}
	purger := &purgerStub{n: 1}
	s := &Sweeper{Catalog: expirer, Drafts: purger, Logger: quietLogger()}

	s.sweep(context.Background())
	assert.Equal(t, 1, expirer.calls)
	assert.Equal(t, 1, purger.calls)
}

func TestSweepDraftPurgeSurvivesPostingFailure(t *testing.T) {
	expirer := &expirerStub{err: errors.New("db down")}
	purger := &purgerStub{}
	s := &Sweeper{Catalog: expirer, Drafts: purger, Logger: quietLogger()}

	s.sweep(context.Background())
	assert.Equal(t, 1, purger.calls)
}

func TestStartRequiresBothDependencies(t *testing.T) {
	s := &Sweeper{Drafts: &purgerStub{}}
	require.Error(t, s.Start(context.Background()))

	s = &Sweeper{Catalog: &expirerStub{}}
	require.Error(t, s.Start(context.Background()))
}
