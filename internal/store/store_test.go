package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/repcoach/internal/profile"
)

// newTestStore creates a Store backed by a database file in a temp dir.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := New(dbPath, nil)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})

	return s
}

func TestNewStore_CreatesDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "test.db")

	if _, err := os.Stat(dbPath); !os.IsNotExist(err) {
		t.Fatal("database file should not exist before creating store")
	}

	s, err := New(dbPath, nil)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Fatal("database file should exist after creating store")
	}
	assert.Equal(t, dbPath, s.Path())
}

func TestNewStore_RunsMigrations(t *testing.T) {
	s := newTestStore(t)

	for _, table := range []string{"profiles", "settings", "schema_migrations"} {
		var name string
		err := s.DB().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		if err != nil {
			t.Errorf("expected table %s to exist: %v", table, err)
		}
	}

	version, dirty, err := s.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
	assert.False(t, dirty)
}

func TestNewStore_ReopenIsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	s, err := New(dbPath, nil)
	require.NoError(t, err)
	require.NoError(t, s.Settings().Set(KeyLastExercise, "knee_dominant"))
	require.NoError(t, s.Close())

	s, err = New(dbPath, nil)
	require.NoError(t, err)
	defer s.Close()

	v, err := s.Settings().Get(KeyLastExercise)
	require.NoError(t, err)
	assert.Equal(t, "knee_dominant", v)
}

func TestProfileRepository(t *testing.T) {
	s := newTestStore(t)
	repo := s.Profiles()

	curl := profile.Profile{
		ID:     "curl",
		Name:   "Curl",
		Kind:   profile.KindAngle,
		Points: []string{"LEFT_SHOULDER", "LEFT_ELBOW", "LEFT_WRIST"},
		Start:  profile.Condition{Operator: profile.Less, Value: 50},
		End:    profile.Condition{Operator: profile.Greater, Value: 150},
	}

	t.Run("upsert and get", func(t *testing.T) {
		require.NoError(t, repo.Upsert(curl))

		got, err := repo.Get("curl")
		require.NoError(t, err)
		assert.Equal(t, curl, got.Profile)
		assert.Equal(t, 1, got.Position)
		assert.False(t, got.CreatedAt.IsZero())
	})

	t.Run("upsert replaces and keeps position", func(t *testing.T) {
		raise := profile.Defaults()[1]
		require.NoError(t, repo.Upsert(raise))

		updated := curl.Clone()
		updated.Name = "Hammer curl"
		updated.End.Value = 145
		require.NoError(t, repo.Upsert(updated))

		got, err := repo.Get("curl")
		require.NoError(t, err)
		assert.Equal(t, "Hammer curl", got.Name)
		assert.Equal(t, 145.0, got.End.Value)
		assert.Equal(t, 1, got.Position)

		list, err := repo.List()
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "curl", list[0].ID)
		assert.Equal(t, raise.ID, list[1].ID)
	})

	t.Run("rejects malformed", func(t *testing.T) {
		bad := curl.Clone()
		bad.ID = "bad"
		bad.Points = bad.Points[:2]
		assert.ErrorIs(t, repo.Upsert(bad), profile.ErrMalformedProfile)

		_, err := repo.Get("bad")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete("curl"))
		_, err := repo.Get("curl")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, repo.Delete("curl"), ErrNotFound)
	})
}

func TestSeedProfiles(t *testing.T) {
	s := newTestStore(t)

	n, err := s.SeedProfiles(profile.Defaults())
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	n, err = s.SeedProfiles(profile.Defaults())
	require.NoError(t, err)
	assert.Equal(t, 0, n, "seeding a non-empty catalog is a no-op")

	catalog, err := s.Catalog()
	require.NoError(t, err)
	reg, err := profile.NewRegistry(catalog...)
	require.NoError(t, err)

	want := profile.Defaults()
	got := reg.List()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i], got[i])
	}
}

func TestSettingsRepository(t *testing.T) {
	s := newTestStore(t)
	settings := s.Settings()

	_, err := settings.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, settings.Set(KeyLastExercise, "elbow_dominant"))
	require.NoError(t, settings.Set(KeyLastExercise, "hip_dominant"))

	v, err := settings.Get(KeyLastExercise)
	require.NoError(t, err)
	assert.Equal(t, "hip_dominant", v)
}
