package repository

import "github.com/lakowalski/luxmedhunter/internal/domain/entity"

// DatabaseRepository persists the whole local database document.
// Save must never leave a partially written document behind.
type DatabaseRepository interface {
	Load() (entity.Snapshot, error)
	Save(snapshot entity.Snapshot) error
}
