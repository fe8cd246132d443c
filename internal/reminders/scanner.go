package reminders

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"data-atlas/catalog-portal/catalog-portal-backend/internal/changelog"
	"data-atlas/catalog-portal/catalog-portal-backend/internal/survey"
)

// InstanceSource lists live instances past their due date.
type InstanceSource interface {
	FindOverdue(ctx context.Context, asOf time.Time) ([]survey.Instance, error)
}

// Scanner periodically flags overdue survey instances. Each instance is
// flagged once, on the first scan after its due date passes; an audit entry
// is the only side effect, actual chasing stays with the survey owners.
type Scanner struct {
	instances InstanceSource
	audit     survey.AuditLog
	logger    *zap.Logger
	cron      *cron.Cron
	mu        sync.Mutex
	lastScan  time.Time
	running   bool
}

func NewScanner(instances InstanceSource, audit survey.AuditLog, logger *zap.Logger) *Scanner {
	return &Scanner{
		instances: instances,
		audit:     audit,
		logger:    logger,
		cron:      cron.New(),
	}
}

// Start schedules the scan. The schedule is a standard cron expression.
func (s *Scanner) Start(schedule string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}

	if _, err := s.cron.AddFunc(schedule, func() {
		if err := s.ScanOnce(context.Background()); err != nil {
			s.logger.Error("Overdue instance scan failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("invalid reminder schedule %q: %w", schedule, err)
	}

	s.cron.Start()
	s.running = true
	s.logger.Info("Overdue instance scanner started", zap.String("schedule", schedule))
	return nil
}

// Stop halts the scheduler and waits for a running scan to finish.
func (s *Scanner) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	// Wait outside the lock: an in-flight scan needs s.mu to record its
	// lastScan before the stop context becomes done.
	<-s.cron.Stop().Done()
}

// ScanOnce flags every instance whose due date fell since the previous scan.
// The first scan after startup flags everything currently overdue.
func (s *Scanner) ScanOnce(ctx context.Context) error {
	s.mu.Lock()
	since := s.lastScan
	now := time.Now()
	s.lastScan = now
	s.mu.Unlock()

	overdue, err := s.instances.FindOverdue(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to list overdue instances: %w", err)
	}

	flagged := 0
	for _, inst := range overdue {
		if inst.DueDate == nil || !inst.DueDate.After(since) {
			continue
		}
		s.audit.Append(ctx, changelog.Entry{
			Operation:  changelog.OperationUpdate,
			UserID:     "system",
			ParentKind: changelog.KindSurveyInstance,
			ParentID:   inst.ID,
			Message: fmt.Sprintf("Survey Instance: overdue since %s, status %s",
				inst.DueDate.Format("2006-01-02"), inst.Status),
		})
		flagged++
	}

	if flagged > 0 {
		s.logger.Info("Flagged overdue survey instances", zap.Int("count", flagged))
	}
	return nil
}
