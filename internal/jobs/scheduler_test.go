package jobs_test

import (
	"testing"
	"time"

	"github.com/straye-as/agency-pipeline/internal/jobs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestScheduler_AddJob(t *testing.T) {
	s := jobs.NewScheduler(zap.NewNop())

	require.NoError(t, s.AddJob("b", "@every 1h", func() {}))
	require.NoError(t, s.AddJob("a", "0 30 6 * * *", func() {}))
	assert.Equal(t, []string{"a", "b"}, s.JobNames())

	assert.Error(t, s.AddJob("a", "@every 1h", func() {}), "duplicate name")
	assert.Error(t, s.AddJob("c", "not a cron", func() {}), "bad expression")
	assert.Len(t, s.JobNames(), 2)
}

func TestScheduler_RunsJobs(t *testing.T) {
	s := jobs.NewScheduler(zap.NewNop())

	ran := make(chan struct{}, 1)
	require.NoError(t, s.AddJob("tick", "* * * * * *", func() {
		select {
		case ran <- struct{}{}:
		default:
		}
	}))

	next, ok := s.NextRun("tick")
	require.True(t, ok)
	assert.True(t, next.IsZero())

	s.Start()
	defer func() { <-s.Stop().Done() }()

	_, ok = s.NextRun("missing")
	assert.False(t, ok)

	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("scheduled job did not run")
	}
}
