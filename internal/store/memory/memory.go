// Package memory is an in-process store.Store used for local runs and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"leadscout/internal/store"
	"leadscout/models"
)

var _ store.Store = (*Store)(nil)

// Store keeps every table in maps guarded by one mutex. Values are copied
// in and out so callers never share memory with the store.
type Store struct {
	mu sync.RWMutex

	searches   map[uuid.UUID]models.SearchJob
	businesses map[uuid.UUID]models.Business
	order      map[uuid.UUID][]uuid.UUID // search id -> business ids in insertion order
	reviews    map[uuid.UUID][]models.Review
	analyses   map[uuid.UUID]models.Analysis // keyed by business id
	leads      map[uuid.UUID]models.SavedLead
	profiles   map[uuid.UUID]models.Profile

	now func() time.Time
}

// New creates an empty store.
func New() *Store {
	return &Store{
		searches:   make(map[uuid.UUID]models.SearchJob),
		businesses: make(map[uuid.UUID]models.Business),
		order:      make(map[uuid.UUID][]uuid.UUID),
		reviews:    make(map[uuid.UUID][]models.Review),
		analyses:   make(map[uuid.UUID]models.Analysis),
		leads:      make(map[uuid.UUID]models.SavedLead),
		profiles:   make(map[uuid.UUID]models.Profile),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Ping(context.Context) error { return nil }
func (s *Store) Close() error               { return nil }

func (s *Store) CreateSearch(_ context.Context, search *models.SearchJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if search.ID == uuid.Nil {
		search.ID = uuid.New()
	}
	if _, exists := s.searches[search.ID]; exists {
		return fmt.Errorf("search %s: %w", search.ID, store.ErrConflict)
	}
	if search.CreatedAt.IsZero() {
		search.CreatedAt = s.now()
	}
	s.searches[search.ID] = *search
	return nil
}

func (s *Store) CompleteSearch(_ context.Context, id uuid.UUID, source models.DataSource) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	search, ok := s.searches[id]
	if !ok {
		return store.NotFound("search", id)
	}
	if search.IsCompleted() {
		return nil
	}
	now := s.now()
	search.Status = models.SearchStatusCompleted
	search.DataSource = &source
	search.CompletedAt = &now
	s.searches[id] = search
	return nil
}

func (s *Store) GetSearch(_ context.Context, id uuid.UUID) (*models.SearchJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	search, ok := s.searches[id]
	if !ok {
		return nil, store.NotFound("search", id)
	}
	return &search, nil
}

func (s *Store) ListSearches(_ context.Context, userID uuid.UUID) ([]models.SearchJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.SearchJob, 0)
	for _, search := range s.searches {
		if search.UserID == userID {
			out = append(out, search)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) InsertBusinesses(_ context.Context, businesses []models.Business) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range businesses {
		if _, ok := s.searches[b.SearchID]; !ok {
			return store.NotFound("search", b.SearchID)
		}
		if _, exists := s.businesses[b.ID]; exists {
			return fmt.Errorf("business %s: %w", b.ID, store.ErrConflict)
		}
	}
	now := s.now()
	for _, b := range businesses {
		if b.CreatedAt.IsZero() {
			b.CreatedAt = now
		}
		b.Reviews, b.Analysis = nil, nil
		s.businesses[b.ID] = b
		s.order[b.SearchID] = append(s.order[b.SearchID], b.ID)
	}
	return nil
}

func (s *Store) InsertReviews(_ context.Context, reviews []models.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range reviews {
		if _, ok := s.businesses[r.BusinessID]; !ok {
			return store.NotFound("business", r.BusinessID)
		}
	}
	now := s.now()
	for _, r := range reviews {
		if r.CreatedAt.IsZero() {
			r.CreatedAt = now
		}
		s.reviews[r.BusinessID] = append(s.reviews[r.BusinessID], r)
	}
	return nil
}

func (s *Store) InsertAnalysis(_ context.Context, analysis *models.Analysis) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.businesses[analysis.BusinessID]; !ok {
		return store.NotFound("business", analysis.BusinessID)
	}
	if _, exists := s.analyses[analysis.BusinessID]; exists {
		return fmt.Errorf("analysis for business %s: %w", analysis.BusinessID, store.ErrConflict)
	}
	if analysis.CreatedAt.IsZero() {
		analysis.CreatedAt = s.now()
	}
	s.analyses[analysis.BusinessID] = *analysis
	return nil
}

func (s *Store) ListBusinesses(_ context.Context, searchID uuid.UUID) ([]models.Business, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.order[searchID]
	out := make([]models.Business, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.hydrate(s.businesses[id]))
	}
	return out, nil
}

func (s *Store) GetBusiness(_ context.Context, id uuid.UUID) (*models.Business, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.businesses[id]
	if !ok {
		return nil, store.NotFound("business", id)
	}
	b = s.hydrate(b)
	return &b, nil
}

// hydrate attaches reviews and analysis. Callers hold the read lock.
func (s *Store) hydrate(b models.Business) models.Business {
	b.Reviews = append([]models.Review(nil), s.reviews[b.ID]...)
	if a, ok := s.analyses[b.ID]; ok {
		b.Analysis = &a
	}
	return b
}

// Counts reports the number of stored businesses, reviews and analyses.
func (s *Store) Counts() (businesses, reviews, analyses int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.reviews {
		reviews += len(r)
	}
	return len(s.businesses), reviews, len(s.analyses)
}

func (s *Store) CreateLead(_ context.Context, lead *models.SavedLead) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.businesses[lead.BusinessID]; !ok {
		return store.NotFound("business", lead.BusinessID)
	}
	for _, existing := range s.leads {
		if existing.UserID == lead.UserID && existing.BusinessID == lead.BusinessID {
			return fmt.Errorf("lead for business %s: %w", lead.BusinessID, store.ErrConflict)
		}
	}
	if lead.ID == uuid.Nil {
		lead.ID = uuid.New()
	}
	now := s.now()
	lead.CreatedAt, lead.UpdatedAt = now, now
	stored := *lead
	stored.Business = nil
	s.leads[lead.ID] = stored
	return nil
}

func (s *Store) GetLead(_ context.Context, id uuid.UUID) (*models.SavedLead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lead, ok := s.leads[id]
	if !ok {
		return nil, store.NotFound("lead", id)
	}
	lead = s.withBusiness(lead)
	return &lead, nil
}

func (s *Store) ListLeads(_ context.Context, userID uuid.UUID, status *models.LeadStatus) ([]models.SavedLead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.SavedLead, 0)
	for _, lead := range s.leads {
		if lead.UserID != userID || (status != nil && lead.Status != *status) {
			continue
		}
		out = append(out, s.withBusiness(lead))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) withBusiness(lead models.SavedLead) models.SavedLead {
	if b, ok := s.businesses[lead.BusinessID]; ok {
		b = s.hydrate(b)
		lead.Business = &b
	}
	return lead
}

func (s *Store) UpdateLead(_ context.Context, lead *models.SavedLead) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.leads[lead.ID]
	if !ok {
		return store.NotFound("lead", lead.ID)
	}
	existing.Status = lead.Status
	existing.Notes = lead.Notes
	existing.ColdCallScript = lead.ColdCallScript
	existing.ContactedAt = lead.ContactedAt
	existing.UpdatedAt = s.now()
	lead.UpdatedAt = existing.UpdatedAt
	s.leads[lead.ID] = existing
	return nil
}

func (s *Store) DeleteLead(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.leads[id]; !ok {
		return store.NotFound("lead", id)
	}
	delete(s.leads, id)
	return nil
}

func (s *Store) GetProfile(_ context.Context, userID uuid.UUID) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[userID]
	if !ok {
		return nil, store.NotFound("profile", userID)
	}
	p.Services = append([]string(nil), p.Services...)
	return &p, nil
}

func (s *Store) SaveProfileServices(_ context.Context, userID uuid.UUID, services []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		p = models.Profile{ID: userID}
	}
	p.Services = append([]string(nil), services...)
	p.UpdatedAt = s.now()
	s.profiles[userID] = p
	return nil
}
