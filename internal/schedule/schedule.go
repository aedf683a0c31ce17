package schedule

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

var ErrNoJobs = errors.New("no scheduled jobs configured")

// Job is a report run triggered by a five-field cron expression.
type Job struct {
	Name string
	Spec string
	Run  func(ctx context.Context) error
}

type scheduledJob struct {
	Job
	sched cron.Schedule
}

// Scheduler runs jobs one at a time in the foreground. It never starts a job
// while another is still running.
type Scheduler struct {
	jobs []scheduledJob
	loc  *time.Location
	now  func() time.Time
	wait func(context.Context, time.Duration) error
	logf func(string, ...any)
}

// New parses every job spec. Jobs with an empty spec are disabled.
func New(loc *time.Location, jobs ...Job) (*Scheduler, error) {
	if loc == nil {
		loc = time.UTC
	}
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	s := &Scheduler{loc: loc, now: time.Now, wait: waitContext, logf: log.Printf}
	for _, job := range jobs {
		spec := strings.TrimSpace(job.Spec)
		if spec == "" {
			s.logf("schedule %s disabled (no cron expression)", job.Name)
			continue
		}
		sched, err := parser.Parse(spec)
		if err != nil {
			return nil, fmt.Errorf("invalid schedule for %s %q: %w", job.Name, spec, err)
		}
		s.jobs = append(s.jobs, scheduledJob{Job: job, sched: sched})
	}
	return s, nil
}

func (s *Scheduler) Len() int {
	return len(s.jobs)
}

// Next returns the job that fires first after now. Ties go to the job
// registered first.
func (s *Scheduler) Next(now time.Time) (Job, time.Time, bool) {
	var (
		best   scheduledJob
		bestAt time.Time
		found  bool
	)
	now = now.In(s.loc)
	for _, job := range s.jobs {
		at := job.sched.Next(now)
		if !found || at.Before(bestAt) {
			best, bestAt, found = job, at, true
		}
	}
	return best.Job, bestAt, found
}

// Run blocks until ctx is cancelled. Each job keeps its own fire time and
// only the job that ran is advanced, from the slot it fired for, so jobs
// sharing a slot or falling due during a run still fire afterwards. Job
// failures are logged and the loop moves on.
func (s *Scheduler) Run(ctx context.Context) error {
	if len(s.jobs) == 0 {
		return ErrNoJobs
	}
	start := s.now().In(s.loc)
	nextAt := make([]time.Time, len(s.jobs))
	for i, job := range s.jobs {
		nextAt[i] = job.sched.Next(start)
	}
	for {
		due := 0
		for i := range s.jobs {
			if nextAt[i].Before(nextAt[due]) {
				due = i
			}
		}
		job, firedAt := s.jobs[due], nextAt[due]
		wait := firedAt.Sub(s.now())
		s.logf("Next %s at %s (in %s)", job.Name, firedAt.Format("Mon Jan 2 15:04 MST"), wait.Round(time.Minute))

		if err := s.wait(ctx, wait); err != nil {
			s.logf("scheduler stopped: %v", err)
			return nil
		}
		ranAt := s.now()
		err := job.Run(ctx)
		nextAt[due] = job.sched.Next(firedAt)
		if err != nil {
			s.logf("scheduled %s failed after %s: %v", job.Name, s.now().Sub(ranAt).Round(time.Second), err)
			continue
		}
		s.logf("scheduled %s finished in %s", job.Name, s.now().Sub(ranAt).Round(time.Second))
	}
}

func waitContext(ctx context.Context, d time.Duration) error {
	if d < 0 {
		d = 0
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
