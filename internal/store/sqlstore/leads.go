package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"leadscout/internal/store"
	"leadscout/models"
)

const leadColumns = `id, user_id, business_id, status, notes, cold_call_script, contacted_at, created_at, updated_at`

func (s *Store) CreateLead(ctx context.Context, lead *models.SavedLead) error {
	if lead.ID == uuid.Nil {
		lead.ID = uuid.New()
	}
	now := s.now()
	lead.CreatedAt, lead.UpdatedAt = now, now
	_, err := s.exec(ctx, s.db, `INSERT INTO saved_leads (`+leadColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		lead.ID.String(), lead.UserID.String(), lead.BusinessID.String(), string(lead.Status),
		lead.Notes, lead.ColdCallScript, lead.ContactedAt, now, now)
	return wrap(err, "create lead")
}

func scanLead(row scanner) (models.SavedLead, error) {
	var (
		l      models.SavedLead
		status string
	)
	err := row.Scan(&l.ID, &l.UserID, &l.BusinessID, &status, &l.Notes, &l.ColdCallScript, &l.ContactedAt, &l.CreatedAt, &l.UpdatedAt)
	l.Status = models.LeadStatus(status)
	return l, err
}

func (s *Store) GetLead(ctx context.Context, id uuid.UUID) (*models.SavedLead, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+leadColumns+` FROM saved_leads WHERE id = ?`), id.String())
	lead, err := scanLead(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.NotFound("lead", id)
	}
	if err != nil {
		return nil, wrap(err, "get lead")
	}
	if lead.Business, err = s.GetBusiness(ctx, lead.BusinessID); err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	return &lead, nil
}

func (s *Store) ListLeads(ctx context.Context, userID uuid.UUID, status *models.LeadStatus) ([]models.SavedLead, error) {
	where := []string{"user_id = ?"}
	args := []interface{}{userID.String()}
	if status != nil {
		where = append(where, "status = ?")
		args = append(args, string(*status))
	}
	rows, err := s.query(ctx, s.db, `SELECT `+leadColumns+` FROM saved_leads WHERE `+strings.Join(where, " AND ")+` ORDER BY created_at DESC`, args...)
	if err != nil {
		return nil, wrap(err, "list leads")
	}
	leads := make([]models.SavedLead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			rows.Close()
			return nil, wrap(err, "list leads")
		}
		leads = append(leads, lead)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, wrap(err, "list leads")
	}
	for i := range leads {
		b, err := s.GetBusiness(ctx, leads[i].BusinessID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		leads[i].Business = b
	}
	return leads, nil
}

func (s *Store) UpdateLead(ctx context.Context, lead *models.SavedLead) error {
	lead.UpdatedAt = s.now()
	res, err := s.exec(ctx, s.db, `UPDATE saved_leads SET status = ?, notes = ?, cold_call_script = ?, contacted_at = ?, updated_at = ?
	WHERE id = ?`,
		string(lead.Status), lead.Notes, lead.ColdCallScript, lead.ContactedAt, lead.UpdatedAt, lead.ID.String())
	if err != nil {
		return wrap(err, "update lead")
	}
	return affected(res, "lead", lead.ID)
}

func (s *Store) DeleteLead(ctx context.Context, id uuid.UUID) error {
	res, err := s.exec(ctx, s.db, `DELETE FROM saved_leads WHERE id = ?`, id.String())
	if err != nil {
		return wrap(err, "delete lead")
	}
	return affected(res, "lead", id)
}

func affected(res sql.Result, kind string, id uuid.UUID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s %s: %w", kind, id, err)
	}
	if n == 0 {
		return store.NotFound(kind, id)
	}
	return nil
}

func (s *Store) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	var (
		p        models.Profile
		services string
	)
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT id, services, credits, onboarding_completed, updated_at FROM profiles WHERE id = ?`), userID.String())
	err := row.Scan(&p.ID, &services, &p.Credits, &p.OnboardingCompleted, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.NotFound("profile", userID)
	}
	if err != nil {
		return nil, wrap(err, "get profile")
	}
	if err := json.Unmarshal([]byte(services), &p.Services); err != nil {
		return nil, fmt.Errorf("profile %s: decoding services: %w", userID, err)
	}
	return &p, nil
}

func (s *Store) SaveProfileServices(ctx context.Context, userID uuid.UUID, services []string) error {
	if services == nil {
		services = []string{}
	}
	encoded, err := json.Marshal(services)
	if err != nil {
		return err
	}
	_, err = s.exec(ctx, s.db, `INSERT INTO profiles (id, services, updated_at) VALUES (?, ?, ?)
	ON CONFLICT (id) DO UPDATE SET services = excluded.services, updated_at = excluded.updated_at`,
		userID.String(), string(encoded), s.now())
	return wrap(err, "save profile services")
}
