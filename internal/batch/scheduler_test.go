package batch

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingJob struct {
	runs atomic.Int32
}

func (j *countingJob) Run(ctx context.Context) error {
	if _, ok := ctx.Deadline(); !ok {
		panic("job context has no deadline")
	}
	j.runs.Add(1)
	return nil
}

func TestSchedule(t *testing.T) {
	t.Run("registers the job with the default schedule", func(t *testing.T) {
		c := cron.New()
		job := &countingJob{}

		id, err := Schedule(c, "LoanStanding", "", 0, job, logger)
		require.NoError(t, err)

		entry := c.Entry(id)
		require.True(t, entry.Valid())
		entry.WrappedJob.Run()
		assert.Equal(t, int32(1), job.runs.Load())
	})

	t.Run("rejects an invalid spec", func(t *testing.T) {
		_, err := Schedule(cron.New(), "LoanStanding", "not a cron spec", time.Minute, &countingJob{}, logger)
		assert.Error(t, err)
	})
}
