package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lakowalski/luxmedhunter/internal/domain/entity"
	"github.com/lakowalski/luxmedhunter/internal/domain/gateway"
	"github.com/lakowalski/luxmedhunter/internal/domain/repository"
	"github.com/lakowalski/luxmedhunter/pkg/validator"

	"github.com/sirupsen/logrus"
)

type HuntingUsecase interface {
	RunCycle(ctx context.Context, userID string) (*entity.HuntCycleResult, error)
	FetchLastSearch(ctx context.Context, userID string) (*entity.SearchCriteria, error)
	GetSearchCriteria(ctx context.Context, userID string) (*entity.SearchCriteria, error)
	ListBookings(ctx context.Context, userID string) (entity.Ledger, error)
}

type huntingUsecase struct {
	log         *logrus.Logger
	database    repository.DatabaseRepository
	credentials repository.CredentialRepository
	sessions    repository.SessionCache
	portal      gateway.PortalClient
	validator   *validator.CustomValidator
	now         func() time.Time
}

func NewHuntingUsecase(
	log *logrus.Logger,
	database repository.DatabaseRepository,
	credentials repository.CredentialRepository,
	sessions repository.SessionCache,
	portal gateway.PortalClient,
) HuntingUsecase {
	return &huntingUsecase{
		log:         log,
		database:    database,
		credentials: credentials,
		sessions:    sessions,
		portal:      portal,
		validator:   validator.NewValidator(),
		now:         time.Now,
	}
}

// RunCycle runs one hunting cycle for userID.
//
// Flow:
// 1. Load the snapshot and the stored criteria (no portal call without criteria)
// 2. Log in, reusing a cached session while its token is valid
// 3. Query the portal, re-sort and drop slots already in the ledger
// 4. Book the earliest remaining slot once, unless the window is already booked today
// 5. Persist the snapshot once
//
// The returned result is never nil. A booking conflict is reported in the
// result only; every other failure is also returned as an error.
func (u *huntingUsecase) RunCycle(ctx context.Context, userID string) (*entity.HuntCycleResult, error) {
	startedAt := u.now()
	result := &entity.HuntCycleResult{UserID: userID, CycleStartedAt: startedAt}
	log := u.log.WithField("user_id", userID)

	fail := func(err error) (*entity.HuntCycleResult, error) {
		result.Error = entity.KindOf(err)
		return result, err
	}

	// Step 1: criteria
	snapshot, err := u.database.Load()
	if err != nil {
		log.Warnf("Failed to load database: %+v", err)
		return fail(err)
	}
	criteria, err := u.storedCriteria(&snapshot, userID)
	if err != nil {
		return fail(err)
	}

	// Step 2: session
	session, err := u.session(ctx, userID)
	if err != nil {
		log.Warnf("Cannot open portal session: %+v", err)
		return fail(err)
	}

	// Step 3: query and filter
	slots, err := u.portal.FindSlots(ctx, session, *criteria)
	if err != nil {
		u.dropSessionOnAuthFailure(ctx, userID, err)
		log.Warnf("Slot search failed: %+v", err)
		return fail(err)
	}
	result.SlotsSeen = len(slots)

	entity.SortSlots(slots)
	ledger := snapshot.Ledger(userID)
	candidates := make([]entity.AvailableSlot, 0, len(slots))
	for _, slot := range slots {
		if ledger.Claimed(slot.SlotID) {
			continue
		}
		candidates = append(candidates, slot)
	}

	snapshot.MarkRun(startedAt)

	if len(candidates) == 0 {
		log.Infof("No new availability (%d slots seen)", len(slots))
		return u.persist(&snapshot, result)
	}
	if existing := ledger.ConfirmedOn(criteria, startedAt); existing != nil {
		log.Infof("Search window already booked today (slot %s), not booking again", existing.SlotID)
		return u.persist(&snapshot, result)
	}

	// Step 4: book exactly once
	slot := candidates[0]
	result.Slot = &slot
	log.Infof("Booking slot %s at %s", slot.SlotID, slot.StartTime.Format(time.RFC3339))

	record := entity.NewBookingRecord(criteria, slot, startedAt)
	confirmation, err := u.portal.Book(ctx, session, slot.SlotID)
	switch {
	case err == nil:
		record.Confirm()
		if confirmation != nil && confirmation.ReservationID != "" {
			log.Infof("Slot %s booked, reservation %s", slot.SlotID, confirmation.ReservationID)
		}
	case errors.Is(err, entity.ErrBookingConflict):
		log.Warnf("Slot %s could not be booked: %+v", slot.SlotID, err)
		record.Fail(err.Error())
		result.Error = entity.ErrorKindBookingConflict
	default:
		u.dropSessionOnAuthFailure(ctx, userID, err)
		log.Warnf("Booking call for slot %s failed: %+v", slot.SlotID, err)
		return fail(err)
	}
	result.BookingAttempted = true

	if err := snapshot.AppendBooking(record); err != nil {
		return fail(fmt.Errorf("%w: %v", entity.ErrPersistenceFailure, err))
	}
	result.BookingRecord = &record

	// Step 5: persist
	return u.persist(&snapshot, result)
}

func (u *huntingUsecase) persist(snapshot *entity.Snapshot, result *entity.HuntCycleResult) (*entity.HuntCycleResult, error) {
	if err := u.database.Save(*snapshot); err != nil {
		u.log.Errorf("Failed to persist database: %+v", err)
		if !errors.Is(err, entity.ErrPersistenceFailure) {
			err = fmt.Errorf("%w: %v", entity.ErrPersistenceFailure, err)
		}
		result.Error = entity.ErrorKindPersistenceFailure
		return result, err
	}
	return result, nil
}

func (u *huntingUsecase) storedCriteria(snapshot *entity.Snapshot, userID string) (*entity.SearchCriteria, error) {
	criteria, ok := snapshot.Criteria(userID)
	if !ok {
		return nil, fmt.Errorf("%w: user %s", entity.ErrNoSearchCriteria, userID)
	}
	if err := u.validator.Validate(criteria); err != nil {
		return nil, fmt.Errorf("%w: stored criteria of %s are invalid: %s", entity.ErrNoSearchCriteria, userID, u.validator.Describe(err))
	}
	if _, _, err := criteria.Window(time.Local); err != nil {
		return nil, fmt.Errorf("%w: stored criteria of %s: %v", entity.ErrNoSearchCriteria, userID, err)
	}
	return criteria, nil
}

// session returns a usable portal session, logging in when the cache has none
func (u *huntingUsecase) session(ctx context.Context, userID string) (*gateway.Session, error) {
	now := u.now()

	cached, err := u.sessions.Get(ctx, userID)
	if err != nil {
		u.log.Warnf("Session cache read failed for %s: %+v", userID, err)
	}
	if cached != nil && !cached.Expired(now) {
		return cached, nil
	}

	credentials, err := u.credentials.Get(userID)
	if err != nil {
		return nil, err
	}

	session, err := u.portal.Authenticate(ctx, *credentials)
	if err != nil {
		return nil, err
	}

	if err := u.sessions.Set(ctx, session, session.ExpiresAt.Sub(now)); err != nil {
		u.log.Warnf("Session cache write failed for %s: %+v", userID, err)
	}
	return session, nil
}

func (u *huntingUsecase) dropSessionOnAuthFailure(ctx context.Context, userID string, err error) {
	if !errors.Is(err, entity.ErrAuthenticationFailed) {
		return
	}
	if derr := u.sessions.Delete(ctx, userID); derr != nil {
		u.log.Warnf("Session cache delete failed for %s: %+v", userID, derr)
	}
}

// FetchLastSearch replaces the stored criteria of userID with the most recent
// search made on the portal
func (u *huntingUsecase) FetchLastSearch(ctx context.Context, userID string) (*entity.SearchCriteria, error) {
	session, err := u.session(ctx, userID)
	if err != nil {
		return nil, err
	}

	criteria, err := u.portal.FetchLastSearch(ctx, session)
	if err != nil {
		u.dropSessionOnAuthFailure(ctx, userID, err)
		u.log.Warnf("Failed to fetch last search for %s: %+v", userID, err)
		return nil, err
	}
	criteria.UserID = userID
	if err := u.validator.Validate(criteria); err != nil {
		return nil, fmt.Errorf("%w: last search of %s cannot be used: %s", entity.ErrNoSearchCriteria, userID, u.validator.Describe(err))
	}

	snapshot, err := u.database.Load()
	if err != nil {
		return nil, err
	}
	snapshot.ReplaceCriteria(*criteria)
	if err := u.database.Save(snapshot); err != nil {
		if !errors.Is(err, entity.ErrPersistenceFailure) {
			err = fmt.Errorf("%w: %v", entity.ErrPersistenceFailure, err)
		}
		return nil, err
	}

	stored, _ := snapshot.Criteria(userID)
	u.log.Infof("Stored search %q for %s", stored.Name, userID)
	return stored, nil
}

func (u *huntingUsecase) GetSearchCriteria(_ context.Context, userID string) (*entity.SearchCriteria, error) {
	snapshot, err := u.database.Load()
	if err != nil {
		return nil, err
	}
	criteria, ok := snapshot.Criteria(userID)
	if !ok {
		return nil, fmt.Errorf("%w: user %s", entity.ErrNoSearchCriteria, userID)
	}
	return criteria, nil
}

func (u *huntingUsecase) ListBookings(_ context.Context, userID string) (entity.Ledger, error) {
	snapshot, err := u.database.Load()
	if err != nil {
		return nil, err
	}
	return snapshot.Ledger(userID), nil
}
