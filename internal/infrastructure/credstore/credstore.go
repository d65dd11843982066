package credstore

import (
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/lakowalski/luxmedhunter/internal/domain/entity"
	"github.com/lakowalski/luxmedhunter/internal/domain/repository"
	"github.com/lakowalski/luxmedhunter/internal/infrastructure/filestore"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"
)

const (
	fileVersion = 1
	saltSize    = 16

	// scrypt parameters recommended for interactive logins
	scryptN = 1 << 15
	scryptR = 8
	scryptP = 1
)

var (
	ErrNoMasterKey      = errors.New("credentials.master_key is not set")
	ErrDecrypt          = errors.New("cannot decrypt stored credentials, wrong master key?")
	ErrUnsupportedStore = errors.New("unsupported credentials file version")
)

type sealedSecret struct {
	Nonce  []byte `json:"nonce"`
	Secret []byte `json:"secret"`
}

type document struct {
	Version int                     `json:"version"`
	Salt    []byte                  `json:"salt"`
	Users   map[string]sealedSecret `json:"users"`
}

type store struct {
	file      *filestore.File
	masterKey []byte
	log       *logrus.Logger

	mu      sync.Mutex
	keySalt []byte
	key     []byte
}

// NewStore opens the encrypted credentials file at path.
// Secrets are sealed with XChaCha20-Poly1305 under a key derived from masterKey.
func NewStore(path, masterKey string, log *logrus.Logger) repository.CredentialRepository {
	return &store{
		file:      filestore.New(path, 0o600),
		masterKey: []byte(masterKey),
		log:       log,
	}
}

func (s *store) Get(userID string) (*entity.Credentials, error) {
	doc, err := s.read()
	if err != nil {
		return nil, err
	}

	sealed, ok := doc.Users[userID]
	if !ok {
		return nil, fmt.Errorf("%w: no credentials for %s", entity.ErrConfigurationMissing, userID)
	}
	if len(s.masterKey) == 0 {
		return nil, fmt.Errorf("%w: %v", entity.ErrConfigurationMissing, ErrNoMasterKey)
	}

	aead, err := s.aead(doc.Salt)
	if err != nil {
		return nil, err
	}
	password, err := aead.Open(nil, sealed.Nonce, sealed.Secret, []byte(userID))
	if err != nil {
		s.log.Warnf("Failed to open credentials of %s: %+v", userID, err)
		return nil, fmt.Errorf("%w: %v", entity.ErrConfigurationMissing, ErrDecrypt)
	}

	return &entity.Credentials{UserID: userID, Password: string(password)}, nil
}

func (s *store) List() ([]string, error) {
	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(doc.Users))
	for id := range doc.Users {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

func (s *store) Put(credentials entity.Credentials) error {
	if len(s.masterKey) == 0 {
		return fmt.Errorf("%w: %v", entity.ErrConfigurationMissing, ErrNoMasterKey)
	}

	doc, err := s.read()
	if err != nil {
		return err
	}
	if len(doc.Salt) == 0 {
		doc.Salt = make([]byte, saltSize)
		if _, err := rand.Read(doc.Salt); err != nil {
			return err
		}
	}

	aead, err := s.aead(doc.Salt)
	if err != nil {
		return err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return err
	}

	doc.Users[credentials.UserID] = sealedSecret{
		Nonce:  nonce,
		Secret: aead.Seal(nil, nonce, []byte(credentials.Password), []byte(credentials.UserID)),
	}
	return s.write(doc)
}

func (s *store) Delete(userID string) (bool, error) {
	doc, err := s.read()
	if err != nil {
		return false, err
	}
	if _, ok := doc.Users[userID]; !ok {
		return false, nil
	}
	delete(doc.Users, userID)
	return true, s.write(doc)
}

func (s *store) read() (*document, error) {
	doc := &document{Version: fileVersion, Users: make(map[string]sealedSecret)}
	if _, err := s.file.Read(doc); err != nil {
		return nil, fmt.Errorf("%w: read credentials: %v", entity.ErrConfigurationMissing, err)
	}
	if doc.Version != fileVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedStore, doc.Version)
	}
	if doc.Users == nil {
		doc.Users = make(map[string]sealedSecret)
	}
	return doc, nil
}

func (s *store) write(doc *document) error {
	if err := s.file.Write(doc); err != nil {
		return fmt.Errorf("%w: write credentials: %v", entity.ErrPersistenceFailure, err)
	}
	return nil
}

// aead derives the sealing key for salt, reusing the last derived key
func (s *store) aead(salt []byte) (cipher.AEAD, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.key == nil || !slices.Equal(s.keySalt, salt) {
		key, err := scrypt.Key(s.masterKey, salt, scryptN, scryptR, scryptP, chacha20poly1305.KeySize)
		if err != nil {
			return nil, fmt.Errorf("derive credentials key: %w", err)
		}
		s.key = key
		s.keySalt = slices.Clone(salt)
	}
	return chacha20poly1305.NewX(s.key)
}
