// Package store defines persistence for searches, their businesses, reviews
// and analyses, and the CRM records built on top of them.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"leadscout/models"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record already exists")
)

// Table names shared by every backend.
const (
	TableSearches   = "searches"
	TableBusinesses = "businesses"
	TableReviews    = "reviews"
	TableAnalyses   = "analyses"
	TableSavedLeads = "saved_leads"
	TableProfiles   = "profiles"
)

// SearchStore is what the search pipeline reads and writes.
type SearchStore interface {
	CreateSearch(ctx context.Context, search *models.SearchJob) error
	// CompleteSearch moves a processing search to completed. Completed
	// searches are left untouched.
	CompleteSearch(ctx context.Context, id uuid.UUID, source models.DataSource) error
	GetSearch(ctx context.Context, id uuid.UUID) (*models.SearchJob, error)
	ListSearches(ctx context.Context, userID uuid.UUID) ([]models.SearchJob, error)

	// InsertBusinesses writes all rows or none, preserving slice order for readers.
	InsertBusinesses(ctx context.Context, businesses []models.Business) error
	InsertReviews(ctx context.Context, reviews []models.Review) error
	// InsertAnalysis fails with ErrConflict when the business already has one.
	InsertAnalysis(ctx context.Context, analysis *models.Analysis) error

	// ListBusinesses returns a search's businesses in insertion order with
	// their reviews and analysis attached.
	ListBusinesses(ctx context.Context, searchID uuid.UUID) ([]models.Business, error)
	GetBusiness(ctx context.Context, id uuid.UUID) (*models.Business, error)
}

// LeadStore holds the CRM side: saved leads and operator profiles.
type LeadStore interface {
	// CreateLead fails with ErrConflict when the user already saved the business.
	CreateLead(ctx context.Context, lead *models.SavedLead) error
	GetLead(ctx context.Context, id uuid.UUID) (*models.SavedLead, error)
	ListLeads(ctx context.Context, userID uuid.UUID, status *models.LeadStatus) ([]models.SavedLead, error)
	UpdateLead(ctx context.Context, lead *models.SavedLead) error
	DeleteLead(ctx context.Context, id uuid.UUID) error

	GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	SaveProfileServices(ctx context.Context, userID uuid.UUID, services []string) error
}

// Store is a complete backend.
type Store interface {
	SearchStore
	LeadStore
	Ping(ctx context.Context) error
	Close() error
}

// NotFound wraps ErrNotFound with the missing record.
func NotFound(kind string, id uuid.UUID) error {
	return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
}
