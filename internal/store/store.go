package store

import (
	"context"

	"github.com/joescharf/sb/internal/models"
)

// Store defines the persistence interface for the bisect history database.
type Store interface {
	// Archived sessions
	ArchiveSession(ctx context.Context, s *models.ArchivedSession) error
	GetSession(ctx context.Context, id string) (*models.ArchivedSession, error)
	ListSessions(ctx context.Context, workingCopy string, limit int) ([]*models.ArchivedSession, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
