package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/spec-kit/incident-intake/internal/domain"
	"github.com/spec-kit/incident-intake/internal/persistence"
)

const fileLockPrefix = "incident-intake:store:"

type fileIncidentRepository struct {
	path   string
	mu     sync.Mutex
	locker persistence.Locker
}

// NewFileIncidentRepository stores incidents as a pretty-printed JSON array in path.
// locker may be nil, in which case writes are only serialized within this process.
func NewFileIncidentRepository(path string, locker persistence.Locker) IncidentRepository {
	return &fileIncidentRepository{path: path, locker: locker}
}

func (r *fileIncidentRepository) Append(ctx context.Context, incident *domain.Incident) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.locker != nil {
		unlock, err := r.locker.Lock(ctx, r.lockKey())
		if err != nil {
			return err
		}
		defer unlock()
	}

	incidents, err := r.load()
	if err != nil {
		return err
	}

	incident.ID = nextID(incidents)
	incidents = append(incidents, *incident)

	return r.save(incidents)
}

func (r *fileIncidentRepository) ListAll(_ context.Context) ([]domain.Incident, error) {
	return r.load()
}

func (r *fileIncidentRepository) load() ([]domain.Incident, error) {
	content, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []domain.Incident{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read incidents file: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(content))
	dec.UseNumber()

	incidents := []domain.Incident{}
	if err := dec.Decode(&incidents); err != nil {
		return nil, fmt.Errorf("parse incidents file: %w", err)
	}
	if incidents == nil {
		incidents = []domain.Incident{}
	}
	return incidents, nil
}

// save writes through a temp file and renames it over the store.
func (r *fileIncidentRepository) save(incidents []domain.Incident) error {
	content, err := json.MarshalIndent(incidents, "", "  ")
	if err != nil {
		return fmt.Errorf("encode incidents: %w", err)
	}

	dir := filepath.Dir(r.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		return fmt.Errorf("replace incidents file: %w", err)
	}
	return nil
}

func (r *fileIncidentRepository) lockKey() string {
	abs, err := filepath.Abs(r.path)
	if err != nil {
		abs = r.path
	}
	return fileLockPrefix + abs
}

func nextID(incidents []domain.Incident) int64 {
	var maxID int64
	for _, inc := range incidents {
		if inc.ID > maxID {
			maxID = inc.ID
		}
	}
	return maxID + 1
}
