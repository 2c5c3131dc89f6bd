package repository

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/incident-intake/internal/domain"
)

func newIncident(name string) *domain.Incident {
	return &domain.Incident{
		ID:           999,
		CXAgent:      domain.DefaultCXAgent,
		Priority:     domain.DefaultPriority,
		CustomerName: name,
		Country:      domain.DefaultCountry,
		Status:       domain.DefaultStatus,
		Channel:      domain.DefaultChannel,
		CreatedAt:    domain.NewTimestamp(time.Date(2025, 1, 2, 3, 4, 5, 6_000_000, time.UTC)),
	}
}

func TestFileRepositoryListAllMissingFile(t *testing.T) {
	repo := NewFileIncidentRepository(filepath.Join(t.TempDir(), "incidents.json"), nil)

	incidents, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, incidents)
	assert.Empty(t, incidents)
}

func TestFileRepositoryAppendThenList(t *testing.T) {
	ctx := context.Background()
	repo := NewFileIncidentRepository(filepath.Join(t.TempDir(), "incidents.json"), nil)

	inc := newIncident("Ana")
	require.NoError(t, repo.Append(ctx, inc))
	assert.Equal(t, int64(1), inc.ID)

	incidents, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, incidents, 1)
	assert.Equal(t, *inc, incidents[0])
}

func TestFileRepositorySequentialAppends(t *testing.T) {
	ctx := context.Background()
	repo := NewFileIncidentRepository(filepath.Join(t.TempDir(), "incidents.json"), nil)

	names := []string{"a", "b", "c", "d", "e"}
	for _, name := range names {
		require.NoError(t, repo.Append(ctx, newIncident(name)))
	}

	incidents, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, incidents, len(names))

	seen := map[int64]bool{}
	for i, inc := range incidents {
		assert.Equal(t, names[i], inc.CustomerName)
		assert.Equal(t, int64(i+1), inc.ID)
		assert.False(t, seen[inc.ID])
		seen[inc.ID] = true
	}
}

func TestFileRepositoryConcurrentAppendsKeepEveryIncident(t *testing.T) {
	ctx := context.Background()
	repo := NewFileIncidentRepository(filepath.Join(t.TempDir(), "incidents.json"), nil)

	const n = 25
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, repo.Append(ctx, newIncident("x")))
		}()
	}
	wg.Wait()

	incidents, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, incidents, n)
	for i, inc := range incidents {
		assert.Equal(t, int64(i+1), inc.ID)
	}
}

func TestFileRepositoryWritesPrettyArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "incidents.json")
	repo := NewFileIncidentRepository(path, nil)
	require.NoError(t, repo.Append(context.Background(), newIncident("Ana")))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(content), "[\n  {\n    \"id\": 1,"))

	var raw []map[string]any
	require.NoError(t, json.Unmarshal(content, &raw))
	require.Len(t, raw, 1)
	assert.Equal(t, "Ana", raw[0]["customer_name"])
	assert.Equal(t, "2025-01-02T03:04:05.006Z", raw[0]["createdAt"])
}

func TestFileRepositoryContinuesExistingSequence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "incidents.json")
	existing := `[{"id": 7, "cx_agent": "Alejandra", "priority": 2, "createdAt": "2024-05-01T10:00:00.000Z"}]`
	require.NoError(t, os.WriteFile(path, []byte(existing), 0o644))

	repo := NewFileIncidentRepository(path, nil)
	inc := newIncident("Ana")
	require.NoError(t, repo.Append(context.Background(), inc))
	assert.Equal(t, int64(8), inc.ID)

	incidents, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, incidents, 2)
	assert.Equal(t, json.Number("2"), incidents[0].Priority)
}

func TestFileRepositoryKeepsExplicitNullAcrossWrites(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "incidents.json")
	repo := NewFileIncidentRepository(path, nil)

	first := newIncident("Ana")
	first.CustomerEmail = domain.Null
	require.NoError(t, repo.Append(ctx, first))
	require.NoError(t, repo.Append(ctx, newIncident("Luis")))

	var raw []map[string]any
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(content, &raw))
	require.Len(t, raw, 2)
	assert.Contains(t, raw[0], "customer_email")
	assert.Nil(t, raw[0]["customer_email"])
	assert.NotContains(t, raw[1], "customer_email")
}

func TestFileRepositoryWritesMillisecondTimestamps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "incidents.json")
	repo := NewFileIncidentRepository(path, nil)

	inc := newIncident("Ana")
	inc.CreatedAt = domain.NewTimestamp(time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC))
	require.NoError(t, repo.Append(context.Background(), inc))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"createdAt": "2025-01-02T03:04:05.000Z"`)
}

func TestFileRepositoryInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "incidents.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))
	repo := NewFileIncidentRepository(path, nil)

	_, err := repo.ListAll(context.Background())
	assert.Error(t, err)

	err = repo.Append(context.Background(), newIncident("Ana"))
	assert.Error(t, err)

	content, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, "{broken", string(content))
}

type stubLocker struct {
	calls    int
	released int
	err      error
}

func (s *stubLocker) Lock(_ context.Context, key string) (func(), error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return func() { s.released++ }, nil
}

func TestFileRepositoryUsesLocker(t *testing.T) {
	locker := &stubLocker{}
	repo := NewFileIncidentRepository(filepath.Join(t.TempDir(), "incidents.json"), locker)

	require.NoError(t, repo.Append(context.Background(), newIncident("Ana")))
	assert.Equal(t, 1, locker.calls)
	assert.Equal(t, 1, locker.released)
}

func TestFileRepositoryLockFailureAbortsAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "incidents.json")
	repo := NewFileIncidentRepository(path, &stubLocker{err: errors.New("busy")})

	err := repo.Append(context.Background(), newIncident("Ana"))
	assert.Error(t, err)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}
