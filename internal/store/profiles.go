package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ayusman/repcoach/internal/profile"
)

// ProfileRecord is a stored exercise profile.
type ProfileRecord struct {
	profile.Profile
	Position  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProfileRepository provides CRUD operations for exercise profiles.
type ProfileRepository struct {
	db *sql.DB
}

// Profiles returns the profile repository for this store.
func (s *Store) Profiles() *ProfileRepository {
	return &ProfileRepository{db: s.db}
}

// Upsert validates p and inserts it, or replaces the stored profile with the
// same id. New profiles are appended to the end of the catalog.
func (r *ProfileRepository) Upsert(p profile.Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}

	points, err := json.Marshal(p.Points)
	if err != nil {
		return fmt.Errorf("encoding points: %w", err)
	}

	now := time.Now()
	_, err = r.db.Exec(
		`INSERT INTO profiles (id, name, kind, points, start_operator, start_value,
		                       end_operator, end_value, position, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?,
		         (SELECT COALESCE(MAX(position), 0) + 1 FROM profiles), ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		     name = excluded.name,
		     kind = excluded.kind,
		     points = excluded.points,
		     start_operator = excluded.start_operator,
		     start_value = excluded.start_value,
		     end_operator = excluded.end_operator,
		     end_value = excluded.end_value,
		     updated_at = excluded.updated_at`,
		p.ID, p.Name, string(p.Kind), string(points),
		string(p.Start.Operator), p.Start.Value,
		string(p.End.Operator), p.End.Value,
		now, now,
	)
	return err
}

const profileColumns = `id, name, kind, points, start_operator, start_value,
	end_operator, end_value, position, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanProfile(row scanner) (*ProfileRecord, error) {
	rec := &ProfileRecord{}
	var kind, points, startOp, endOp string

	err := row.Scan(&rec.ID, &rec.Name, &kind, &points, &startOp, &rec.Start.Value,
		&endOp, &rec.End.Value, &rec.Position, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}

	rec.Kind = profile.Kind(kind)
	rec.Start.Operator = profile.Operator(startOp)
	rec.End.Operator = profile.Operator(endOp)
	if err := json.Unmarshal([]byte(points), &rec.Points); err != nil {
		return nil, fmt.Errorf("decoding points of %s: %w", rec.ID, err)
	}
	return rec, nil
}

// Get retrieves a profile by id.
func (r *ProfileRepository) Get(id string) (*ProfileRecord, error) {
	rec, err := scanProfile(r.db.QueryRow(
		`SELECT `+profileColumns+` FROM profiles WHERE id = ?`, id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

// List retrieves all profiles in catalog order.
func (r *ProfileRepository) List() ([]*ProfileRecord, error) {
	rows, err := r.db.Query(`SELECT ` + profileColumns + ` FROM profiles ORDER BY position, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*ProfileRecord
	for rows.Next() {
		rec, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}

// Delete removes a profile by id.
func (r *ProfileRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM profiles WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Count returns the number of stored profiles.
func (r *ProfileRepository) Count() (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM profiles`).Scan(&n)
	return n, err
}

// SeedProfiles stores defaults when the catalog is empty and reports how many
// profiles were inserted.
func (s *Store) SeedProfiles(defaults []profile.Profile) (int, error) {
	repo := s.Profiles()
	n, err := repo.Count()
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}

	for _, p := range defaults {
		if err := repo.Upsert(p); err != nil {
			return 0, fmt.Errorf("seeding %s: %w", p.ID, err)
		}
	}
	s.log.WithField("count", len(defaults)).Info("Seeded exercise catalog")
	return len(defaults), nil
}

// Catalog returns the stored profiles as plain values, ready for a registry.
func (s *Store) Catalog() ([]profile.Profile, error) {
	recs, err := s.Profiles().List()
	if err != nil {
		return nil, err
	}
	out := make([]profile.Profile, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.Profile)
	}
	return out, nil
}
