package repository

import (
	"github.com/lakowalski/luxmedhunter/internal/domain/entity"
	domainRepo "github.com/lakowalski/luxmedhunter/internal/domain/repository"

	"gorm.io/gorm"
)

type auditLogRepository struct{}

func NewAuditLogRepository() domainRepo.AuditLogRepository {
	return &auditLogRepository{}
}

func (r *auditLogRepository) Create(db *gorm.DB, log *entity.AuditLog) error {
	return db.Create(log).Error
}

// FindByUserID returns the newest entries of a user first
func (r *auditLogRepository) FindByUserID(db *gorm.DB, userID string, limit int) ([]entity.AuditLog, error) {
	var logs []entity.AuditLog
	query := db.Where("user_id = ?", userID).Order("created_at DESC").Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
