package integrity

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"aqevent/pkg/logger"
)

const jobTimeout = 5 * time.Minute

// Parser accepts six-field expressions with seconds as well as descriptors
// such as @daily and @every.
var Parser = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Job runs the integrity check on a cron schedule and logs what it finds.
type Job struct {
	checker  *Checker
	schedule string
	log      *logger.Logger

	ctx    context.Context
	cancel context.CancelFunc
	cron   *cron.Cron
}

func NewJob(checker *Checker, schedule string, log *logger.Logger) *Job {
	ctx, cancel := context.WithCancel(context.Background())
	return &Job{
		checker:  checker,
		schedule: schedule,
		log:      log,
		ctx:      ctx,
		cancel:   cancel,
		cron:     cron.New(cron.WithParser(Parser)),
	}
}

// Start registers the check and starts the scheduler. An empty schedule
// disables the job.
func (j *Job) Start() error {
	if j.schedule == "" {
		j.log.Info("Scheduled integrity check disabled")
		return nil
	}
	if _, err := j.cron.AddFunc(j.schedule, j.Run); err != nil {
		return err
	}
	j.cron.Start()
	j.log.Info("Scheduled integrity check started", "schedule", j.schedule)
	return nil
}

// Run performs one check. Exported so the job can be triggered outside the schedule.
func (j *Job) Run() {
	ctx, cancel := context.WithTimeout(j.ctx, jobTimeout)
	defer cancel()

	report := j.checker.Check(ctx)
	if report.Healthy {
		j.log.Info("Integrity check passed",
			"pending", report.PendingCount,
			"approved", report.ApprovedCount,
		)
		return
	}
	j.log.Warn("Integrity check found issues",
		"summary", report.Summary,
		"issues", len(report.Issues),
	)
	for _, issue := range report.Issues {
		j.log.Warn("Integrity issue",
			"type", issue.Type,
			"severity", issue.Severity,
			"event_id", issue.EventID,
			"message", issue.Message,
		)
	}
}

// Stop cancels a running check and waits for the scheduler to wind down.
func (j *Job) Stop() {
	j.cancel()
	<-j.cron.Stop().Done()
}
