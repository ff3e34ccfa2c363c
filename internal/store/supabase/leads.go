package supabase

import (
	"context"

	"github.com/google/uuid"
	postgrest "github.com/supabase-community/postgrest-go"

	"leadscout/internal/store"
	"leadscout/models"
)

func (s *Store) CreateLead(ctx context.Context, lead *models.SavedLead) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if lead.ID == uuid.Nil {
		lead.ID = uuid.New()
	}
	now := s.now()
	lead.CreatedAt, lead.UpdatedAt = now, now
	row := map[string]interface{}{
		"id":               lead.ID.String(),
		"user_id":          lead.UserID.String(),
		"business_id":      lead.BusinessID.String(),
		"status":           lead.Status,
		"notes":            lead.Notes,
		"cold_call_script": lead.ColdCallScript,
		"contacted_at":     lead.ContactedAt,
		"created_at":       now,
		"updated_at":       now,
	}
	_, _, err := s.db.From(store.TableSavedLeads).Insert(row, false, "", "minimal", "").Execute()
	return wrap(err, "create lead")
}

func (s *Store) GetLead(ctx context.Context, id uuid.UUID) (*models.SavedLead, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	body, _, err := s.db.From(store.TableSavedLeads).Select("*", "", false).Eq("id", id.String()).Limit(1, "").Execute()
	if err != nil {
		return nil, wrap(err, "get lead")
	}
	var rows []models.SavedLead
	if err := decode(body, &rows, "get lead"); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, store.NotFound("lead", id)
	}
	if err := s.attachBusinesses(rows); err != nil {
		return nil, err
	}
	return &rows[0], nil
}

func (s *Store) ListLeads(ctx context.Context, userID uuid.UUID, status *models.LeadStatus) ([]models.SavedLead, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q := s.db.From(store.TableSavedLeads).Select("*", "", false).Eq("user_id", userID.String())
	if status != nil {
		q = q.Eq("status", string(*status))
	}
	body, _, err := q.Order("created_at", &postgrest.OrderOpts{Ascending: false}).Execute()
	if err != nil {
		return nil, wrap(err, "list leads")
	}
	rows := make([]models.SavedLead, 0)
	if err := decode(body, &rows, "list leads"); err != nil {
		return nil, err
	}
	if err := s.attachBusinesses(rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Store) attachBusinesses(leads []models.SavedLead) error {
	if len(leads) == 0 {
		return nil
	}
	ids := make([]string, 0, len(leads))
	for _, l := range leads {
		ids = append(ids, l.BusinessID.String())
	}
	body, _, err := s.db.From(store.TableBusinesses).Select("*", "", false).In("id", ids).Execute()
	if err != nil {
		return wrap(err, "load lead businesses")
	}
	var businesses []models.Business
	if err := decode(body, &businesses, "load lead businesses"); err != nil {
		return err
	}
	if err := s.hydrate(businesses); err != nil {
		return err
	}
	byID := make(map[uuid.UUID]*models.Business, len(businesses))
	for i := range businesses {
		byID[businesses[i].ID] = &businesses[i]
	}
	for i := range leads {
		leads[i].Business = byID[leads[i].BusinessID]
	}
	return nil
}

func (s *Store) UpdateLead(ctx context.Context, lead *models.SavedLead) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	lead.UpdatedAt = s.now()
	update := map[string]interface{}{
		"status":           lead.Status,
		"notes":            lead.Notes,
		"cold_call_script": lead.ColdCallScript,
		"contacted_at":     lead.ContactedAt,
		"updated_at":       lead.UpdatedAt,
	}
	body, _, err := s.db.From(store.TableSavedLeads).Update(update, "representation", "").Eq("id", lead.ID.String()).Execute()
	if err != nil {
		return wrap(err, "update lead")
	}
	var rows []models.SavedLead
	if err := decode(body, &rows, "update lead"); err != nil {
		return err
	}
	if len(rows) == 0 {
		return store.NotFound("lead", lead.ID)
	}
	return nil
}

func (s *Store) DeleteLead(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, _, err := s.db.From(store.TableSavedLeads).Delete("representation", "").Eq("id", id.String()).Execute()
	if err != nil {
		return wrap(err, "delete lead")
	}
	var rows []models.SavedLead
	if err := decode(body, &rows, "delete lead"); err != nil {
		return err
	}
	if len(rows) == 0 {
		return store.NotFound("lead", id)
	}
	return nil
}

func (s *Store) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	body, _, err := s.db.From(store.TableProfiles).Select("*", "", false).Eq("id", userID.String()).Limit(1, "").Execute()
	if err != nil {
		return nil, wrap(err, "get profile")
	}
	var rows []models.Profile
	if err := decode(body, &rows, "get profile"); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, store.NotFound("profile", userID)
	}
	return &rows[0], nil
}

func (s *Store) SaveProfileServices(ctx context.Context, userID uuid.UUID, services []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if services == nil {
		services = []string{}
	}
	row := map[string]interface{}{
		"id":         userID.String(),
		"services":   services,
		"updated_at": s.now(),
	}
	_, _, err := s.db.From(store.TableProfiles).Upsert(row, "id", "minimal", "").Execute()
	return wrap(err, "save profile services")
}
