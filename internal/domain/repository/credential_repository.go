package repository

import "github.com/lakowalski/luxmedhunter/internal/domain/entity"

// CredentialRepository is the secret store of portal logins.
// The hunting engine only reads from it.
type CredentialRepository interface {
	Get(userID string) (*entity.Credentials, error)
	List() ([]string, error)
	Put(credentials entity.Credentials) error
	Delete(userID string) (bool, error)
}
