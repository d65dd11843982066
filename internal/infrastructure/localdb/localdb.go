package localdb

import (
	"fmt"

	"github.com/lakowalski/luxmedhunter/internal/domain/entity"
	"github.com/lakowalski/luxmedhunter/internal/domain/repository"
	"github.com/lakowalski/luxmedhunter/internal/infrastructure/filestore"

	"github.com/sirupsen/logrus"
)

type store struct {
	file *filestore.File
	log  *logrus.Logger
}

// NewStore opens the local database document at path. The file is created on
// the first save; a missing file loads as an empty database.
func NewStore(path string, log *logrus.Logger) repository.DatabaseRepository {
	return &store{
		file: filestore.New(path, 0o600),
		log:  log,
	}
}

func (s *store) Load() (entity.Snapshot, error) {
	snapshot := entity.NewSnapshot()
	found, err := s.file.Read(&snapshot)
	if err != nil {
		return entity.Snapshot{}, fmt.Errorf("%w: load %s: %v", entity.ErrPersistenceFailure, s.file.Path(), err)
	}
	if !found {
		s.log.Debugf("Database %s not found, starting empty", s.file.Path())
		return entity.NewSnapshot(), nil
	}

	if snapshot.Users == nil {
		snapshot.Users = make(map[string]*entity.UserState)
	}
	for id, u := range snapshot.Users {
		if u == nil {
			snapshot.Users[id] = &entity.UserState{}
		}
	}
	return snapshot, nil
}

func (s *store) Save(snapshot entity.Snapshot) error {
	if snapshot.Users == nil {
		snapshot.Users = make(map[string]*entity.UserState)
	}
	if err := s.file.Write(snapshot); err != nil {
		s.log.Errorf("Failed to persist database %s: %+v", s.file.Path(), err)
		return fmt.Errorf("%w: save %s: %v", entity.ErrPersistenceFailure, s.file.Path(), err)
	}
	return nil
}
