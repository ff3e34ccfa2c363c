package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"leadscout/internal/store"
	"leadscout/models"
)

const searchColumns = `id, user_id, business_type, location, radius, status, data_source, fingerprint, created_at, completed_at`

func (s *Store) CreateSearch(ctx context.Context, search *models.SearchJob) error {
	if search.ID == uuid.Nil {
		search.ID = uuid.New()
	}
	if search.CreatedAt.IsZero() {
		search.CreatedAt = s.now()
	}
	_, err := s.exec(ctx, s.db, `INSERT INTO searches (id, user_id, business_type, location, radius, status, fingerprint, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		search.ID.String(), search.UserID.String(), search.BusinessType, search.Location,
		search.Radius, string(search.Status), search.Fingerprint, search.CreatedAt)
	return wrap(err, "create search")
}

func (s *Store) CompleteSearch(ctx context.Context, id uuid.UUID, source models.DataSource) error {
	res, err := s.exec(ctx, s.db, `UPDATE searches SET status = ?, data_source = ?, completed_at = ?
	WHERE id = ? AND status = ?`,
		string(models.SearchStatusCompleted), string(source), s.now(), id.String(), string(models.SearchStatusProcessing))
	if err != nil {
		return wrap(err, "complete search")
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		return nil
	}
	_, err = s.GetSearch(ctx, id)
	return err
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSearch(row scanner) (models.SearchJob, error) {
	var (
		search models.SearchJob
		status string
		source sql.NullString
	)
	err := row.Scan(&search.ID, &search.UserID, &search.BusinessType, &search.Location, &search.Radius,
		&status, &source, &search.Fingerprint, &search.CreatedAt, &search.CompletedAt)
	if err != nil {
		return search, err
	}
	search.Status = models.SearchStatus(status)
	if source.Valid {
		ds := models.DataSource(source.String)
		search.DataSource = &ds
	}
	return search, nil
}

func (s *Store) GetSearch(ctx context.Context, id uuid.UUID) (*models.SearchJob, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+searchColumns+` FROM searches WHERE id = ?`), id.String())
	search, err := scanSearch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.NotFound("search", id)
	}
	if err != nil {
		return nil, wrap(err, "get search")
	}
	return &search, nil
}

func (s *Store) ListSearches(ctx context.Context, userID uuid.UUID) ([]models.SearchJob, error) {
	rows, err := s.query(ctx, s.db, `SELECT `+searchColumns+` FROM searches WHERE user_id = ? ORDER BY created_at DESC`, userID.String())
	if err != nil {
		return nil, wrap(err, "list searches")
	}
	defer rows.Close()
	out := make([]models.SearchJob, 0)
	for rows.Next() {
		search, err := scanSearch(rows)
		if err != nil {
			return nil, wrap(err, "list searches")
		}
		out = append(out, search)
	}
	return out, wrap(rows.Err(), "list searches")
}
