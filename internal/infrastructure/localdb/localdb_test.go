package localdb

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/lakowalski/luxmedhunter/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func criteria(userID string) entity.SearchCriteria {
	return entity.SearchCriteria{
		UserID:      userID,
		Name:        "internist",
		CityID:      8,
		ServiceID:   7,
		DateFrom:    "2024-06-01",
		DateTo:      "2024-06-30",
		LocationIDs: []int{3, 1},
		LanguageID:  10,
	}
}

func record(userID, slotID string, status entity.BookingStatus, bookedAt time.Time) entity.BookingRecord {
	return entity.BookingRecord{
		ID:        uuid.New(),
		SlotID:    slotID,
		UserID:    userID,
		ServiceID: 7,
		DateFrom:  "2024-06-01",
		DateTo:    "2024-06-30",
		SlotStart: time.Date(2024, 6, 5, 14, 0, 0, 0, time.UTC),
		BookedAt:  bookedAt,
		Status:    status,
	}
}

func TestLoad_MissingFileIsEmpty(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "database.json"), quietLogger())

	snap, err := s.Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(snap.Users) != 0 || snap.Users == nil {
		t.Fatalf("expected empty non-nil users map, got %#v", snap.Users)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	day := time.Date(2024, 6, 2, 8, 0, 0, 0, time.UTC)

	oneUser := entity.NewSnapshot()
	oneUser.ReplaceCriteria(criteria("jan@example.com"))

	mixed := entity.NewSnapshot()
	mixed.ReplaceCriteria(criteria("jan@example.com"))
	if err := mixed.AppendBooking(record("jan@example.com", "S3", entity.BookingStatusFailed, day)); err != nil {
		t.Fatal(err)
	}
	if err := mixed.AppendBooking(record("jan@example.com", "S2", entity.BookingStatusConfirmed, day.Add(time.Hour))); err != nil {
		t.Fatal(err)
	}
	mixed.MarkRun(day.Add(2 * time.Hour))

	cases := map[string]entity.Snapshot{
		"empty":              entity.NewSnapshot(),
		"one user no ledger": oneUser,
		"mixed ledger":       mixed,
	}

	for name, want := range cases {
		t.Run(name, func(t *testing.T) {
			s := NewStore(filepath.Join(t.TempDir(), "database.json"), quietLogger())
			if err := s.Save(want); err != nil {
				t.Fatalf("Save error: %v", err)
			}
			got, err := s.Load()
			if err != nil {
				t.Fatalf("Load error: %v", err)
			}
			if !reflect.DeepEqual(got, want) {
				t.Fatalf("round trip mismatch:\n got  %#v\n want %#v", got, want)
			}
		})
	}
}

func TestLoad_IgnoresLeftoverTemporaryFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "database.json")
	s := NewStore(path, quietLogger())

	previous := entity.NewSnapshot()
	previous.ReplaceCriteria(criteria("jan@example.com"))
	if err := s.Save(previous); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	// a crash after the temporary write and before the rename
	partial := []byte(`{"users": {"jan@example.com": {"bookings": [{"slot_id": "S9"`)
	if err := os.WriteFile(filepath.Join(dir, "database.json.123.tmp"), partial, 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := NewStore(path, quietLogger()).Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if !reflect.DeepEqual(got, previous) {
		t.Fatalf("expected previous snapshot, got %#v", got)
	}
}

func TestLoad_CorruptDocumentIsPersistenceFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "database.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := NewStore(path, quietLogger()).Load()
	if !errors.Is(err, entity.ErrPersistenceFailure) {
		t.Fatalf("want ErrPersistenceFailure, got %v", err)
	}
}

func TestSave_UnwritableLocationIsPersistenceFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	// parent "directory" is a regular file
	s := NewStore(filepath.Join(blocker, "database.json"), quietLogger())
	if err := s.Save(entity.NewSnapshot()); !errors.Is(err, entity.ErrPersistenceFailure) {
		t.Fatalf("want ErrPersistenceFailure, got %v", err)
	}
}
