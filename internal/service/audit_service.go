package service

import (
	"context"

	"github.com/lakowalski/luxmedhunter/internal/domain/entity"
	"github.com/lakowalski/luxmedhunter/internal/domain/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AuditService appends hunting history to the SQL audit trail.
// Failures are logged and returned but must never stop hunting.
type AuditService interface {
	LogCycle(ctx context.Context, result *entity.HuntCycleResult) error
	LogCriteria(ctx context.Context, criteria *entity.SearchCriteria) error
}

type auditService struct {
	db        *gorm.DB
	log       *logrus.Logger
	auditRepo repository.AuditLogRepository
}

func NewAuditService(db *gorm.DB, log *logrus.Logger, auditRepo repository.AuditLogRepository) AuditService {
	return &auditService{
		db:        db,
		log:       log,
		auditRepo: auditRepo,
	}
}

// LogCycle logs the outcome of one hunting cycle
func (s *auditService) LogCycle(ctx context.Context, result *entity.HuntCycleResult) error {
	metadata := entity.JSON{
		"cycle_started_at":  result.CycleStartedAt,
		"slots_seen":        result.SlotsSeen,
		"booking_attempted": result.BookingAttempted,
	}
	if result.Error != entity.ErrorKindNone {
		metadata["error"] = string(result.Error)
	}
	if r := result.BookingRecord; r != nil {
		metadata["booking_id"] = r.ID.String()
		metadata["status"] = string(r.Status)
		metadata["slot_start"] = r.SlotStart
		if r.Reason != "" {
			metadata["reason"] = r.Reason
		}
	}

	auditLog := &entity.AuditLog{
		UserID:   result.UserID,
		Action:   entity.AuditActionFor(result),
		Metadata: metadata,
	}
	if result.Slot != nil {
		auditLog.SlotID = result.Slot.SlotID
	}

	return s.create(ctx, auditLog)
}

// LogCriteria logs a replacement of the stored search criteria
func (s *auditService) LogCriteria(ctx context.Context, criteria *entity.SearchCriteria) error {
	auditLog := &entity.AuditLog{
		UserID: criteria.UserID,
		Action: entity.AuditActionCriteriaReplaced,
		Metadata: entity.JSON{
			"name":       criteria.Name,
			"service_id": criteria.ServiceID,
			"date_from":  criteria.DateFrom,
			"date_to":    criteria.DateTo,
		},
	}
	return s.create(ctx, auditLog)
}

func (s *auditService) create(ctx context.Context, auditLog *entity.AuditLog) error {
	if err := s.auditRepo.Create(s.db.WithContext(ctx), auditLog); err != nil {
		s.log.Warnf("Failed to create audit log: %+v", err)
		return err
	}
	return nil
}

// NewNoopAuditService is used when the audit trail is disabled
func NewNoopAuditService() AuditService {
	return noopAuditService{}
}

type noopAuditService struct{}

func (noopAuditService) LogCycle(context.Context, *entity.HuntCycleResult) error { return nil }

func (noopAuditService) LogCriteria(context.Context, *entity.SearchCriteria) error { return nil }
