package usecase

import (
	"context"
	"errors"

	"github.com/lakowalski/luxmedhunter/internal/converter"
	"github.com/lakowalski/luxmedhunter/internal/delivery/dto"
	"github.com/lakowalski/luxmedhunter/internal/domain/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 500
)

var (
	ErrAuditLogNotFound = errors.New("audit log not found")
)

type AuditLogUsecase interface {
	GetUserAuditLogs(ctx context.Context, userID string, limit int) (*dto.AuditLogListResponse, error)
}

type auditLogUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	auditLogRepo repository.AuditLogRepository
}

func NewAuditLogUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	auditLogRepo repository.AuditLogRepository,
) AuditLogUsecase {
	return &auditLogUsecase{
		db:           db,
		log:          log,
		auditLogRepo: auditLogRepo,
	}
}

// GetUserAuditLogs returns the newest audit entries of a user
func (u *auditLogUsecase) GetUserAuditLogs(ctx context.Context, userID string, limit int) (*dto.AuditLogListResponse, error) {
	if limit <= 0 {
		limit = defaultAuditLimit
	}
	if limit > maxAuditLimit {
		limit = maxAuditLimit
	}

	logs, err := u.auditLogRepo.FindByUserID(u.db.WithContext(ctx), userID, limit)
	if err != nil {
		u.log.Warnf("Failed to find audit logs of %s: %+v", userID, err)
		return nil, err
	}
	if len(logs) == 0 {
		return nil, ErrAuditLogNotFound
	}

	return &dto.AuditLogListResponse{
		Logs:  converter.AuditLogsToResponses(logs),
		Total: len(logs),
	}, nil
}
