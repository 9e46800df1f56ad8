package jobs

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/localnerve/rentalmanager/internal/logger"
)

// ReapJobName names the idle gateway job
const ReapJobName = "reap-idle-gateways"

// Reaper closes idle sessions and reports how many it closed
type Reaper interface {
	Reap() int
}

// Scheduler runs the background jobs of the server
type Scheduler struct {
	scheduler gocron.Scheduler
}

// NewScheduler registers the reap job at the given interval. Nothing runs until Start.
func NewScheduler(reaper Reaper, interval time.Duration) (*Scheduler, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("reap interval must be positive, got %s", interval)
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(reap, reaper),
		gocron.WithName(ReapJobName),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = scheduler.Shutdown()
		return nil, fmt.Errorf("failed to create %s job: %w", ReapJobName, err)
	}

	return &Scheduler{scheduler: scheduler}, nil
}

func reap(reaper Reaper) {
	if n := reaper.Reap(); n > 0 {
		logger.Default().WithField("job", ReapJobName).Infof("closed %d idle gateways", n)
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	logger.Default().Info("starting background job scheduler")
	s.scheduler.Start()
}

// Stop waits for running jobs and stops the scheduler
func (s *Scheduler) Stop() error {
	logger.Default().Info("stopping background job scheduler")
	return s.scheduler.Shutdown()
}
