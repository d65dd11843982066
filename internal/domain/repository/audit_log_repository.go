package repository

import (
	"github.com/lakowalski/luxmedhunter/internal/domain/entity"

	"gorm.io/gorm"
)

type AuditLogRepository interface {
	Create(db *gorm.DB, auditLog *entity.AuditLog) error
	FindByUserID(db *gorm.DB, userID string, limit int) ([]entity.AuditLog, error)
}
