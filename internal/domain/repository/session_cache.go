package repository

import (
	"context"
	"time"

	"github.com/lakowalski/luxmedhunter/internal/domain/gateway"
)

// SessionCache keeps authenticated portal sessions between cycles
type SessionCache interface {
	Get(ctx context.Context, userID string) (*gateway.Session, error)
	Set(ctx context.Context, session *gateway.Session, ttl time.Duration) error
	Delete(ctx context.Context, userID string) error
}
