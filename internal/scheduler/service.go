package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/brandpulse/review-analytics/internal/config"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const (
	digestTimeout = 45 * time.Minute
	reloadTimeout = 30 * time.Second
)

// Runner is the part of the monitoring service driven by the scheduler
type Runner interface {
	RunMonitoring(ctx context.Context) error
	RunUrgentCheck(ctx context.Context) error
}

// Reloader refreshes the keyword categories from their backend
type Reloader interface {
	Reload(ctx context.Context) error
}

// Service handles scheduling of digest, alert and category refresh jobs
type Service struct {
	config   *config.Config
	runner   Runner
	reloader Reloader
	cron     *cron.Cron
}

// NewService creates a new scheduler service. reloader may be nil.
func NewService(cfg *config.Config, runner Runner, reloader Reloader) (*Service, error) {
	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid time zone %q: %w", cfg.TimeZone, err)
	}

	return &Service{
		config:   cfg,
		runner:   runner,
		reloader: reloader,
		cron:     cron.New(cron.WithSeconds(), cron.WithLocation(loc)),
	}, nil
}

// digestSchedule returns the cron expression for a report schedule
func digestSchedule(schedule string) string {
	switch schedule {
	case "daily":
		// Run daily at 9 AM
		return "0 0 9 * * *"
	default:
		// Run weekly on Monday at 9 AM
		return "0 0 9 * * MON"
	}
}

// Start registers every job and begins the schedule
func (s *Service) Start() error {
	if _, err := s.cron.AddFunc(digestSchedule(s.config.ReportSchedule), s.runDigest); err != nil {
		return err
	}

	// Also add a more frequent check for negative spikes (every 4 hours)
	if _, err := s.cron.AddFunc("0 0 */4 * * *", s.runUrgentCheck); err != nil {
		return err
	}

	if s.reloader != nil && s.config.CategoryReloadInterval > 0 {
		s.cron.Schedule(cron.Every(s.config.CategoryReloadInterval), cron.FuncJob(s.reloadCategories))
	}

	s.cron.Start()
	logrus.Infof("Scheduler started with %s schedule in %s (plus urgent checks every 4 hours)", s.config.ReportSchedule, s.config.TimeZone)
	return nil
}

// Stop stops the scheduler and waits for running jobs
func (s *Service) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
		logrus.Info("Scheduler stopped")
	}
}

// Jobs returns the number of registered jobs
func (s *Service) Jobs() int {
	return len(s.cron.Entries())
}

func (s *Service) runDigest() {
	logrus.Info("Starting scheduled digest run")
	ctx, cancel := context.WithTimeout(context.Background(), digestTimeout)
	defer cancel()

	if err := s.runner.RunMonitoring(ctx); err != nil {
		logrus.Errorf("Scheduled digest run failed: %v", err)
	}
}

func (s *Service) runUrgentCheck() {
	logrus.Info("Starting negative review check (4-hour frequency)")
	ctx, cancel := context.WithTimeout(context.Background(), digestTimeout)
	defer cancel()

	if err := s.runner.RunUrgentCheck(ctx); err != nil {
		logrus.Errorf("Negative review check failed: %v", err)
	}
}

func (s *Service) reloadCategories() {
	ctx, cancel := context.WithTimeout(context.Background(), reloadTimeout)
	defer cancel()

	if err := s.reloader.Reload(ctx); err != nil {
		logrus.Warnf("Keyword category reload failed: %v", err)
	}
}
