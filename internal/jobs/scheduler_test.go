package jobs

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTokens struct {
	refresh atomic.Int32
	codes   atomic.Int32
	err     error
}

func (f *fakeTokens) CleanupExpired(ctx context.Context) (int64, error) {
	f.refresh.Add(1)
	return 3, f.err
}

func (f *fakeTokens) CleanupResetCodes(ctx context.Context) (int64, error) {
	f.codes.Add(1)
	return 1, f.err
}

func TestCleanupJobs(t *testing.T) {
	tokens := &fakeTokens{}
	jobs := CleanupJobs(tokens)

	require.Len(t, jobs, 2)
	assert.Equal(t, "refresh-token-cleanup", jobs[0].Name)
	assert.Equal(t, "reset-code-cleanup", jobs[1].Name)
}

func TestScheduler_Execute_LogsOutcome(t *testing.T) {
	var out bytes.Buffer
	s, err := NewScheduler(zerolog.New(&out))
	require.NoError(t, err)

	s.Execute(CleanupJobs(&fakeTokens{})[0])
	assert.Contains(t, out.String(), `"removed":3`)

	out.Reset()
	s.Execute(CleanupJobs(&fakeTokens{err: errors.New("db down")})[1])
	assert.Contains(t, out.String(), "job failed")
	assert.Contains(t, out.String(), "db down")
}

func TestScheduler_RunsRegisteredJobs(t *testing.T) {
	tokens := &fakeTokens{}
	s, err := NewScheduler(zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, s.Register(20*time.Millisecond, CleanupJobs(tokens)...))
	assert.ElementsMatch(t, []string{"refresh-token-cleanup", "reset-code-cleanup"}, s.Jobs())

	s.Start()
	defer func() { _ = s.Stop() }()

	assert.Eventually(t, func() bool {
		return tokens.refresh.Load() > 0 && tokens.codes.Load() > 0
	}, time.Second, 10*time.Millisecond)
}
