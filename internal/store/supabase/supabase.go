// Package supabase implements store.Store on top of a Supabase project's
// PostgREST API.
package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	postgrest "github.com/supabase-community/postgrest-go"

	"leadscout/internal/store"
	"leadscout/models"
)

var _ store.Store = (*Store)(nil)

// Querier is satisfied by both *supa.Client and *postgrest.Client.
type Querier interface {
	From(table string) *postgrest.QueryBuilder
}

// Store talks to PostgREST. The HTTP calls underneath postgrest-go do not
// take a context, so ctx is only checked before each request.
type Store struct {
	db  Querier
	log logrus.FieldLogger
	now func() time.Time
}

// New wraps an existing client.
func New(db Querier, log logrus.FieldLogger) *Store {
	return &Store{db: db, log: log, now: func() time.Time { return time.Now().UTC() }}
}

func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, _, err := s.db.From(store.TableSearches).Select("id", "", false).Limit(1, "").Execute()
	return wrap(err, "ping")
}

func (s *Store) Close() error { return nil }

// wrap maps PostgREST error codes onto store sentinels.
func wrap(err error, op string) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "(23505)") {
		return fmt.Errorf("%s: %w: %v", op, store.ErrConflict, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func decode(body []byte, into interface{}, op string) error {
	if err := json.Unmarshal(body, into); err != nil {
		return fmt.Errorf("%s: decoding response: %w", op, err)
	}
	return nil
}

func (s *Store) CreateSearch(ctx context.Context, search *models.SearchJob) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if search.ID == uuid.Nil {
		search.ID = uuid.New()
	}
	if search.CreatedAt.IsZero() {
		search.CreatedAt = s.now()
	}
	row := map[string]interface{}{
		"id":            search.ID.String(),
		"user_id":       search.UserID.String(),
		"business_type": search.BusinessType,
		"location":      search.Location,
		"radius":        search.Radius,
		"status":        search.Status,
		"fingerprint":   search.Fingerprint,
		"created_at":    search.CreatedAt,
	}
	_, _, err := s.db.From(store.TableSearches).Insert(row, false, "", "minimal", "").Execute()
	return wrap(err, "create search")
}

func (s *Store) CompleteSearch(ctx context.Context, id uuid.UUID, source models.DataSource) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	update := map[string]interface{}{
		"status":       models.SearchStatusCompleted,
		"data_source":  source,
		"completed_at": s.now(),
	}
	body, _, err := s.db.From(store.TableSearches).
		Update(update, "representation", "").
		Eq("id", id.String()).
		Eq("status", string(models.SearchStatusProcessing)).
		Execute()
	if err != nil {
		return wrap(err, "complete search")
	}
	var updated []models.SearchJob
	if err := decode(body, &updated, "complete search"); err != nil {
		return err
	}
	if len(updated) > 0 {
		return nil
	}
	// Nothing matched: either missing or already completed.
	_, err = s.GetSearch(ctx, id)
	return err
}

func (s *Store) GetSearch(ctx context.Context, id uuid.UUID) (*models.SearchJob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	body, _, err := s.db.From(store.TableSearches).Select("*", "", false).Eq("id", id.String()).Limit(1, "").Execute()
	if err != nil {
		return nil, wrap(err, "get search")
	}
	var rows []models.SearchJob
	if err := decode(body, &rows, "get search"); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, store.NotFound("search", id)
	}
	return &rows[0], nil
}

func (s *Store) ListSearches(ctx context.Context, userID uuid.UUID) ([]models.SearchJob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	body, _, err := s.db.From(store.TableSearches).
		Select("*", "", false).
		Eq("user_id", userID.String()).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		Execute()
	if err != nil {
		return nil, wrap(err, "list searches")
	}
	rows := make([]models.SearchJob, 0)
	return rows, decode(body, &rows, "list searches")
}

func (s *Store) InsertBusinesses(ctx context.Context, businesses []models.Business) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(businesses) == 0 {
		return nil
	}
	now := s.now()
	rows := make([]map[string]interface{}, 0, len(businesses))
	for i, b := range businesses {
		created := b.CreatedAt
		if created.IsZero() {
			created = now
		}
		rows = append(rows, map[string]interface{}{
			"id":           b.ID.String(),
			"search_id":    b.SearchID.String(),
			"name":         b.Name,
			"address":      b.Address,
			"phone":        b.Phone,
			"website":      b.Website,
			"rating":       b.Rating,
			"review_count": b.ReviewCount,
			"data_source":  b.DataSource,
			"sort_order":   i,
			"created_at":   created,
		})
	}
	// A bulk insert is a single statement, so it lands all or nothing.
	_, _, err := s.db.From(store.TableBusinesses).Insert(rows, false, "", "minimal", "").Execute()
	return wrap(err, "insert businesses")
}

func (s *Store) InsertReviews(ctx context.Context, reviews []models.Review) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(reviews) == 0 {
		return nil
	}
	now := s.now()
	rows := make([]map[string]interface{}, 0, len(reviews))
	for i, r := range reviews {
		created := r.CreatedAt
		if created.IsZero() {
			created = now
		}
		rows = append(rows, map[string]interface{}{
			"id":          r.ID.String(),
			"business_id": r.BusinessID.String(),
			"text":        r.Text,
			"rating":      r.Rating,
			"author_name": r.AuthorName,
			"sort_order":  i,
			"created_at":  created,
		})
	}
	_, _, err := s.db.From(store.TableReviews).Insert(rows, false, "", "minimal", "").Execute()
	return wrap(err, "insert reviews")
}

func (s *Store) InsertAnalysis(ctx context.Context, analysis *models.Analysis) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if analysis.CreatedAt.IsZero() {
		analysis.CreatedAt = s.now()
	}
	row := map[string]interface{}{
		"id":               analysis.ID.String(),
		"business_id":      analysis.BusinessID.String(),
		"problem_type":     analysis.ProblemType,
		"urgency_score":    analysis.UrgencyScore,
		"summary":          analysis.Summary,
		"outreach_message": analysis.OutreachMessage,
		"created_at":       analysis.CreatedAt,
	}
	// analyses.business_id is unique; a second insert surfaces as 23505.
	_, _, err := s.db.From(store.TableAnalyses).Insert(row, false, "", "minimal", "").Execute()
	return wrap(err, "insert analysis")
}

func (s *Store) ListBusinesses(ctx context.Context, searchID uuid.UUID) ([]models.Business, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	body, _, err := s.db.From(store.TableBusinesses).
		Select("*", "", false).
		Eq("search_id", searchID.String()).
		Order("sort_order", &postgrest.OrderOpts{Ascending: true}).
		Execute()
	if err != nil {
		return nil, wrap(err, "list businesses")
	}
	businesses := make([]models.Business, 0)
	if err := decode(body, &businesses, "list businesses"); err != nil {
		return nil, err
	}
	if err := s.hydrate(businesses); err != nil {
		return nil, err
	}
	return businesses, nil
}

func (s *Store) GetBusiness(ctx context.Context, id uuid.UUID) (*models.Business, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	body, _, err := s.db.From(store.TableBusinesses).Select("*", "", false).Eq("id", id.String()).Limit(1, "").Execute()
	if err != nil {
		return nil, wrap(err, "get business")
	}
	var rows []models.Business
	if err := decode(body, &rows, "get business"); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, store.NotFound("business", id)
	}
	if err := s.hydrate(rows); err != nil {
		return nil, err
	}
	return &rows[0], nil
}

// hydrate loads reviews and analyses for a batch of businesses with one
// request per table.
func (s *Store) hydrate(businesses []models.Business) error {
	if len(businesses) == 0 {
		return nil
	}
	ids := make([]string, len(businesses))
	index := make(map[uuid.UUID]int, len(businesses))
	for i, b := range businesses {
		ids[i] = b.ID.String()
		index[b.ID] = i
	}

	body, _, err := s.db.From(store.TableReviews).
		Select("*", "", false).
		In("business_id", ids).
		Order("sort_order", &postgrest.OrderOpts{Ascending: true}).
		Execute()
	if err != nil {
		return wrap(err, "load reviews")
	}
	var reviews []models.Review
	if err := decode(body, &reviews, "load reviews"); err != nil {
		return err
	}
	for _, r := range reviews {
		if i, ok := index[r.BusinessID]; ok {
			businesses[i].Reviews = append(businesses[i].Reviews, r)
		}
	}

	body, _, err = s.db.From(store.TableAnalyses).Select("*", "", false).In("business_id", ids).Execute()
	if err != nil {
		return wrap(err, "load analyses")
	}
	var analyses []models.Analysis
	if err := decode(body, &analyses, "load analyses"); err != nil {
		return err
	}
	for k := range analyses {
		a := analyses[k]
		if i, ok := index[a.BusinessID]; ok {
			businesses[i].Analysis = &a
		}
	}
	return nil
}
