// Package session persists the single active bisect session for a working
// copy: a YAML record plus an append-only audit log, both kept under the
// working copy's .svn administrative area so that reset can discard them
// together.
package session

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/joescharf/sb/internal/errs"
	"github.com/joescharf/sb/internal/models"
)

const (
	stateDirName    = "sb"
	sessionFileName = "session.yaml"
	logFileName     = "log"
)

// Store reads and writes the session record for one working copy.
type Store struct {
	wc string
}

// NewStore creates a store rooted at the given working copy path.
func NewStore(wc string) *Store {
	return &Store{wc: filepath.Clean(wc)}
}

// WorkingCopy returns the working copy path the store is rooted at.
func (s *Store) WorkingCopy() string { return s.wc }

// Dir returns the state directory (<wc>/.svn/sb).
func (s *Store) Dir() string {
	return filepath.Join(s.wc, ".svn", stateDirName)
}

func (s *Store) sessionPath() string {
	return filepath.Join(s.Dir(), sessionFileName)
}

// Exists reports whether a session record is present. Its existence is the
// advisory mutual exclusion that makes a second `start` fail.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.sessionPath())
	return err == nil
}

// Load reads the session record. A missing record is NO_ACTIVE_SESSION; a
// record bound to a different working copy path is SESSION_PATH_MISMATCH.
func (s *Store) Load() (*models.Session, error) {
	data, err := os.ReadFile(s.sessionPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.New(errs.CodeNoActiveSession,
				"no bisect session in progress (run 'sb start' first)")
		}
		return nil, fmt.Errorf("read session record: %w", err)
	}

	var sess models.Session
	if err := yaml.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("parse session record: %w", err)
	}
	if sess.Version != models.SchemaVersion {
		return nil, fmt.Errorf("session record has schema version %d, want %d (reset and start over)",
			sess.Version, models.SchemaVersion)
	}
	if filepath.Clean(sess.WorkingCopy) != s.wc {
		return nil, errs.New(errs.CodeSessionPathMismatch,
			"session belongs to working copy %s, not %s", sess.WorkingCopy, s.wc)
	}
	return &sess, nil
}

// Save writes the session record atomically (temp file + rename) so an
// interrupted write never corrupts the active session.
func (s *Store) Save(sess *models.Session) error {
	if err := os.MkdirAll(s.Dir(), 0755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	sess.Version = models.SchemaVersion
	sess.SortSkipped()

	data, err := yaml.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session record: %w", err)
	}

	tmp := s.sessionPath() + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write session record: %w", err)
	}
	if err := os.Rename(tmp, s.sessionPath()); err != nil {
		return fmt.Errorf("replace session record: %w", err)
	}
	return nil
}

// Delete removes the session record and the audit log.
func (s *Store) Delete() error {
	if err := os.Remove(s.sessionPath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session record: %w", err)
	}
	if err := os.Remove(s.logPath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove audit log: %w", err)
	}
	// Leave .svn/sb itself behind; it is empty and cheap.
	return nil
}
