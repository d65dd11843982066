package database

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/lakowalski/luxmedhunter/config"
	"github.com/lakowalski/luxmedhunter/internal/domain/entity"

	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestNewConnection_SQLiteMigratesAuditTable(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "audit.db")

	db, err := NewConnection(config.AuditConfig{Enable: true, Driver: "sqlite", DSN: dsn}, quietLogger())
	if err != nil {
		t.Fatalf("NewConnection: %v", err)
	}
	sqlDB, _ := db.DB()
	defer sqlDB.Close()

	if !db.Migrator().HasTable(&entity.AuditLog{}) {
		t.Fatalf("audit_logs table not created")
	}

	row := entity.AuditLog{UserID: "ala", Action: entity.AuditActionHuntBooked, Metadata: entity.JSON{"slots_seen": 2}}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("insert: %v", err)
	}

	var got entity.AuditLog
	if err := db.First(&got, row.ID).Error; err != nil {
		t.Fatalf("read back: %v", err)
	}
	if got.Metadata["slots_seen"] != float64(2) {
		t.Fatalf("metadata = %v", got.Metadata)
	}
}

func TestNewConnection_Errors(t *testing.T) {
	_, err := NewConnection(config.AuditConfig{Driver: "mysql", DSN: "x"}, quietLogger())
	if err == nil {
		t.Fatalf("unsupported driver must fail")
	}

	missing := filepath.Join(t.TempDir(), "nope", "audit.db")
	if _, err := NewConnection(config.AuditConfig{Driver: "sqlite", DSN: missing}, quietLogger()); err == nil {
		t.Fatalf("missing directory must fail")
	}
}
