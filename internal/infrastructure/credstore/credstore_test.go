package credstore

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/lakowalski/luxmedhunter/internal/domain/entity"

	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestPutGet_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	s := NewStore(path, "master", quietLogger())

	if err := s.Put(entity.Credentials{UserID: "jan@example.com", Password: "s3cret"}); err != nil {
		t.Fatalf("Put error: %v", err)
	}

	got, err := NewStore(path, "master", quietLogger()).Get("jan@example.com")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.UserID != "jan@example.com" || got.Password != "s3cret" {
		t.Fatalf("got %+v", got)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(raw), "s3cret") {
		t.Fatalf("password stored in clear text")
	}
}

func TestGet_UnknownUserIsConfigurationMissing(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "credentials.json"), "master", quietLogger())

	_, err := s.Get("nobody@example.com")
	if !errors.Is(err, entity.ErrConfigurationMissing) {
		t.Fatalf("want ErrConfigurationMissing, got %v", err)
	}
}

func TestGet_WrongMasterKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	if err := NewStore(path, "master", quietLogger()).Put(entity.Credentials{UserID: "jan@example.com", Password: "pw"}); err != nil {
		t.Fatal(err)
	}

	_, err := NewStore(path, "other", quietLogger()).Get("jan@example.com")
	if !errors.Is(err, entity.ErrConfigurationMissing) {
		t.Fatalf("want ErrConfigurationMissing, got %v", err)
	}
	if !strings.Contains(err.Error(), "decrypt") {
		t.Fatalf("error should mention decryption, got %v", err)
	}
}

func TestPut_RequiresMasterKey(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "credentials.json"), "", quietLogger())

	err := s.Put(entity.Credentials{UserID: "jan@example.com", Password: "pw"})
	if !errors.Is(err, entity.ErrConfigurationMissing) {
		t.Fatalf("want ErrConfigurationMissing, got %v", err)
	}
}

func TestListAndDelete(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "credentials.json"), "master", quietLogger())

	for _, id := range []string{"zofia@example.com", "adam@example.com"} {
		if err := s.Put(entity.Credentials{UserID: id, Password: "pw-" + id}); err != nil {
			t.Fatalf("Put %s: %v", id, err)
		}
	}

	ids, err := s.List()
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if want := []string{"adam@example.com", "zofia@example.com"}; !reflect.DeepEqual(ids, want) {
		t.Fatalf("List = %v; want %v", ids, want)
	}

	deleted, err := s.Delete("adam@example.com")
	if err != nil || !deleted {
		t.Fatalf("Delete deleted=%v err=%v", deleted, err)
	}
	deleted, err = s.Delete("adam@example.com")
	if err != nil || deleted {
		t.Fatalf("second Delete deleted=%v err=%v", deleted, err)
	}

	// remaining secret still opens with the same salt
	got, err := s.Get("zofia@example.com")
	if err != nil || got.Password != "pw-zofia@example.com" {
		t.Fatalf("Get after delete: %+v, %v", got, err)
	}
}
