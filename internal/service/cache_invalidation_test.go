package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/college-enrolment-api/pkg/jobs"
)

type recordingQueue struct {
	jobs []jobs.Job
	err  error
}

func (q *recordingQueue) Enqueue(job jobs.Job) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

func seededCache() (*CacheService, *stubCacheRepo) {
	repo := &stubCacheRepo{store: map[string][]byte{
		"reports:capacity:2025/26": []byte(`[]`),
		"reports:capacity:2024/25": []byte(`[]`),
	}}
	return NewCacheService(repo, nil, time.Minute, zap.NewNop(), true), repo
}

func TestCapacityReportInvalidatorInline(t *testing.T) {
	cache, repo := seededCache()
	inv := NewCapacityReportInvalidator(cache, zap.NewNop())

	inv.Schedule(context.Background(), "2025/26")
	assert.NotContains(t, repo.store, "reports:capacity:2025/26")
	assert.Contains(t, repo.store, "reports:capacity:2024/25")
}

func TestCapacityReportInvalidatorEvictsBeforeQueueing(t *testing.T) {
	cache, repo := seededCache()
	queue := &recordingQueue{}
	inv := NewCapacityReportInvalidator(cache, zap.NewNop())
	inv.UseQueue(queue)

	inv.Schedule(context.Background(), "2025/26")
	assert.NotContains(t, repo.store, "reports:capacity:2025/26")
	assert.Empty(t, queue.jobs)
}

func TestCapacityReportInvalidatorRetriesFailedEvictionThroughQueue(t *testing.T) {
	cache, repo := seededCache()
	repo.failDeletes = 1
	queue := &recordingQueue{}
	inv := NewCapacityReportInvalidator(cache, zap.NewNop())
	inv.UseQueue(queue)

	inv.Schedule(context.Background(), "2025/26")
	require.Len(t, queue.jobs, 1)
	assert.Equal(t, JobInvalidateCapacityReport, queue.jobs[0].Type)
	assert.Equal(t, "2025/26", queue.jobs[0].Payload)
	assert.Contains(t, repo.store, "reports:capacity:2025/26")

	require.NoError(t, inv.Handle(context.Background(), queue.jobs[0]))
	assert.NotContains(t, repo.store, "reports:capacity:2025/26")
}

func TestCapacityReportInvalidatorDropsRetryWhenQueueFull(t *testing.T) {
	cache, repo := seededCache()
	repo.failDeletes = 1
	inv := NewCapacityReportInvalidator(cache, zap.NewNop())
	inv.UseQueue(&recordingQueue{err: jobs.ErrQueueFull})

	assert.NotPanics(t, func() { inv.Schedule(context.Background(), "2025/26") })
	assert.Contains(t, repo.store, "reports:capacity:2025/26")
}

func TestCapacityReportInvalidatorFailedEvictionWithoutQueue(t *testing.T) {
	cache, repo := seededCache()
	repo.failDeletes = 1
	inv := NewCapacityReportInvalidator(cache, zap.NewNop())

	inv.Schedule(context.Background(), "2025/26")
	assert.Contains(t, repo.store, "reports:capacity:2025/26")
}

func TestCapacityReportInvalidatorDisabledCache(t *testing.T) {
	repo := &stubCacheRepo{}
	queue := &recordingQueue{}
	inv := NewCapacityReportInvalidator(NewCacheService(repo, nil, time.Minute, nil, false), nil)
	inv.UseQueue(queue)

	inv.Schedule(context.Background(), "2025/26")
	assert.Empty(t, queue.jobs)
	assert.Empty(t, repo.deleted)

	var nilInvalidator *CapacityReportInvalidator
	assert.NotPanics(t, func() { nilInvalidator.Schedule(context.Background(), "2025/26") })
}

func TestCapacityReportInvalidatorHandleRejectsOtherJobs(t *testing.T) {
	cache, _ := seededCache()
	inv := NewCapacityReportInvalidator(cache, zap.NewNop())

	err := inv.Handle(context.Background(), jobs.Job{Type: "other"})
	require.Error(t, err)
	assert.NoError(t, inv.Handle(context.Background(), jobs.Job{Type: JobInvalidateCapacityReport, Payload: 42}))
}

func TestCapacityReportInvalidatorThroughWorkerQueue(t *testing.T) {
	cache, repo := seededCache()
	repo.failDeletes = 1
	inv := NewCapacityReportInvalidator(cache, zap.NewNop())

	done := make(chan struct{})
	queue := jobs.New("cache-invalidation", func(ctx context.Context, job jobs.Job) error {
		defer close(done)
		return inv.Handle(ctx, job)
	}, jobs.Config{Workers: 1, BufferSize: 4})
	queue.Start(context.Background())
	defer queue.Stop()
	inv.UseQueue(queue)

	inv.Schedule(context.Background(), "2024/25")
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("invalidation retry was not processed")
	}
	assert.NotContains(t, repo.store, "reports:capacity:2024/25")
}
