package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/college-enrolment-api/pkg/jobs"
)

// JobInvalidateCapacityReport drops the cached capacity report of the academic year in the payload.
const JobInvalidateCapacityReport = "invalidate_capacity_report"

type jobEnqueuer interface {
	Enqueue(job jobs.Job) error
}

// CapacityReportInvalidator evicts cached capacity reports after seat usage changes.
// Eviction runs inline; the job queue, when attached, only retries evictions that failed.
type CapacityReportInvalidator struct {
	cache  *CacheService
	queue  jobEnqueuer
	logger *zap.Logger
}

// NewCapacityReportInvalidator constructs the invalidator.
func NewCapacityReportInvalidator(cache *CacheService, logger *zap.Logger) *CapacityReportInvalidator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CapacityReportInvalidator{cache: cache, logger: logger}
}

// UseQueue hands failed evictions to queue for retry.
func (i *CapacityReportInvalidator) UseQueue(queue jobEnqueuer) {
	i.queue = queue
}

// Schedule evicts the report for academicYear before returning, so the next read sees fresh seat usage.
func (i *CapacityReportInvalidator) Schedule(ctx context.Context, academicYear string) {
	if i == nil || !i.cache.Enabled() {
		return
	}
	err := i.cache.Invalidate(ctx, capacityReportKey(academicYear))
	if err == nil || i.queue == nil {
		return
	}
	if err := i.queue.Enqueue(jobs.Job{Type: JobInvalidateCapacityReport, Payload: academicYear}); err != nil {
		i.logger.Warn("capacity report eviction dropped", zap.String("academic_year", academicYear), zap.Error(err))
	}
}

// Handle is the jobs.Handler for JobInvalidateCapacityReport.
func (i *CapacityReportInvalidator) Handle(ctx context.Context, job jobs.Job) error {
	if job.Type != JobInvalidateCapacityReport {
		return fmt.Errorf("unexpected job type %q", job.Type)
	}
	year, ok := job.Payload.(string)
	if !ok {
		i.logger.Error("discarding malformed invalidation job", zap.String("job_id", job.ID))
		return nil
	}
	return i.cache.Invalidate(ctx, capacityReportKey(year))
}

func capacityReportKey(academicYear string) string {
	return "reports:capacity:" + academicYear
}
