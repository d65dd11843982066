package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lakowalski/luxmedhunter/internal/domain/entity"
	"github.com/lakowalski/luxmedhunter/internal/domain/repository"
	"github.com/lakowalski/luxmedhunter/internal/infrastructure/metrics"
	"github.com/lakowalski/luxmedhunter/internal/usecase"

	"github.com/sirupsen/logrus"
)

// ErrNoUsers is returned by a single pass when no credentials are registered
var ErrNoUsers = fmt.Errorf("%w: no registered users, run create-credentials first", entity.ErrConfigurationMissing)

// Scheduler drives hunting cycles for every registered user, one at a time
type Scheduler struct {
	hunting  usecase.HuntingUsecase
	users    repository.CredentialRepository
	notifier NotificationService
	audit    AuditService
	metrics  *metrics.Metrics
	lock     CycleLock
	log      *logrus.Logger

	sleep func(ctx context.Context, d time.Duration) error
}

func NewScheduler(
	hunting usecase.HuntingUsecase,
	users repository.CredentialRepository,
	notifier NotificationService,
	audit AuditService,
	m *metrics.Metrics,
	log *logrus.Logger,
) *Scheduler {
	return &Scheduler{
		hunting:  hunting,
		users:    users,
		notifier: notifier,
		audit:    audit,
		metrics:  m,
		lock:     NewLocalCycleLock(),
		log:      log,
		sleep:    sleepContext,
	}
}

// UseLock replaces the in-process cycle lock, e.g. with a Redis lock shared
// by several hunter processes
func (s *Scheduler) UseLock(lock CycleLock) {
	s.lock = lock
}

// Run hunts once per registered user when delay is zero and returns the
// failures of that pass. With a positive delay it repeats forever, sleeping
// the same delay after every pass whatever its outcome, and returns only on a
// persistence failure or when ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return s.Pass(ctx)
	}

	s.log.Infof("Hunting every %s", delay)
	for {
		err := s.Pass(ctx)
		if errors.Is(err, entity.ErrPersistenceFailure) {
			return err
		}
		if err != nil && ctx.Err() == nil {
			s.log.Warnf("Hunting pass finished with errors: %+v", err)
		}

		if err := s.sleep(ctx, delay); err != nil {
			s.log.Info("Scheduler stopped")
			return err
		}
	}
}

// Pass runs one cycle for each registered user in order.
// A persistence failure stops the pass at once; other failures are collected.
func (s *Scheduler) Pass(ctx context.Context) error {
	userIDs, err := s.users.List()
	if err != nil {
		s.log.Warnf("Failed to list registered users: %+v", err)
		return err
	}
	if len(userIDs) == 0 {
		s.log.Warn(ErrNoUsers.Error())
		return ErrNoUsers
	}

	var errs []error
	for _, userID := range userIDs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.cycle(ctx, userID); err != nil {
			if errors.Is(err, entity.ErrPersistenceFailure) {
				return err
			}
			errs = append(errs, fmt.Errorf("%s: %w", userID, err))
		}
	}
	return errors.Join(errs...)
}

// RunUser runs a single reported cycle for one user, as the setup CLI does
func (s *Scheduler) RunUser(ctx context.Context, userID string) error {
	return s.cycle(ctx, userID)
}

func (s *Scheduler) cycle(ctx context.Context, userID string) error {
	unlock, ok, err := s.lock.TryLock(ctx, userID)
	if err != nil {
		s.log.Warnf("Cannot lock cycle of %s: %+v", userID, err)
		return err
	}
	if !ok {
		s.log.Infof("Cycle of %s is already running elsewhere, skipping", userID)
		return nil
	}
	defer unlock()

	started := time.Now()
	result, err := s.hunting.RunCycle(ctx, userID)
	s.metrics.ObserveCycle(result, time.Since(started))

	log := s.log.WithFields(logrus.Fields{
		"user_id":    userID,
		"slots_seen": result.SlotsSeen,
		"outcome":    metrics.Outcome(result),
	})

	if errors.Is(err, entity.ErrPersistenceFailure) {
		log.Errorf("Cannot persist hunting state, stopping: %+v", err)
		return err
	}

	switch {
	case result.Booked():
		log.Infof("Reserved slot %s", result.BookingRecord.SlotID)
	case err != nil:
		log.Warnf("Hunting cycle failed: %+v", err)
	case result.Error == entity.ErrorKindBookingConflict:
		log.Warn("Slot was taken before it could be reserved")
	default:
		log.Info("No new availability")
	}

	outcome := s.notifier.Notify(ctx, userID, result)
	if !outcome.Skipped {
		s.metrics.ObserveNotification(outcome.Provider, outcome.Success)
	}

	if aerr := s.audit.LogCycle(ctx, result); aerr != nil {
		log.Warnf("Audit trail not updated: %+v", aerr)
	}

	return err
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
