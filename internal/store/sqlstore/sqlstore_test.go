package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadscout/internal/store"
	"leadscout/models"
)

func newSQLite(t *testing.T) *Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	s, err := Open(context.Background(), SQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedSearch(t *testing.T, s *Store, user uuid.UUID, created time.Time) *models.SearchJob {
	t.Helper()
	search := &models.SearchJob{
		UserID:       user,
		BusinessType: "dentist",
		Location:     "Denver, CO",
		Radius:       5,
		Status:       models.SearchStatusProcessing,
		Fingerprint:  "abc123",
		CreatedAt:    created,
	}
	require.NoError(t, s.CreateSearch(context.Background(), search))
	return search
}

func TestDialectFor(t *testing.T) {
	d, err := DialectFor("postgres")
	require.NoError(t, err)
	assert.Equal(t, "pgx", d.Driver)
	d, err = DialectFor("SQLite")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", d.Driver)
	_, err = DialectFor("mysql")
	assert.Error(t, err)
}

func TestRebind(t *testing.T) {
	pg := New(nil, Postgres)
	assert.Equal(t, "SELECT * FROM t WHERE a = $1 AND b = $2", pg.rebind("SELECT * FROM t WHERE a = ? AND b = ?"))
	lite := New(nil, SQLite)
	assert.Equal(t, "a = ?", lite.rebind("a = ?"))
}

func TestSQLiteSearchLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newSQLite(t)
	user := uuid.New()
	base := time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC)
	first := seedSearch(t, s, user, base)
	second := seedSearch(t, s, user, base.Add(time.Hour))

	got, err := s.GetSearch(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SearchStatusProcessing, got.Status)
	assert.Nil(t, got.DataSource)
	assert.Nil(t, got.CompletedAt)
	assert.Equal(t, "abc123", got.Fingerprint)

	require.NoError(t, s.CompleteSearch(ctx, first.ID, models.DataSourceSynthetic))
	require.NoError(t, s.CompleteSearch(ctx, first.ID, models.DataSourceLive))
	got, err = s.GetSearch(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, got.IsCompleted())
	assert.Equal(t, models.DataSourceSynthetic, *got.DataSource)
	assert.NotNil(t, got.CompletedAt)

	assert.ErrorIs(t, s.CompleteSearch(ctx, uuid.New(), models.DataSourceLive), store.ErrNotFound)

	list, err := s.ListSearches(ctx, user)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)

	require.NoError(t, s.Ping(ctx))
}

func TestSQLiteBusinessesReviewsAnalyses(t *testing.T) {
	ctx := context.Background()
	s := newSQLite(t)
	search := seedSearch(t, s, uuid.New(), time.Now().UTC())

	rating := 4.7
	phone := "(512) 555-0100"
	businesses := []models.Business{
		models.NewBusiness(search.ID, models.BusinessCandidate{Name: "Smile Studio", Rating: &rating, Phone: &phone, ReviewCount: 30}, models.DataSourceLive),
		models.NewBusiness(search.ID, models.BusinessCandidate{Name: "Bright Teeth"}, models.DataSourceLive),
	}
	require.NoError(t, s.InsertBusinesses(ctx, businesses))

	one := 1
	author := "Dana K."
	require.NoError(t, s.InsertReviews(ctx, []models.Review{
		models.NewReview(businesses[0].ID, models.ReviewSnippet{Text: "front desk was rude and dismissive", Rating: &one, AuthorName: &author}),
		models.NewReview(businesses[0].ID, models.ReviewSnippet{Text: "billing mistake took weeks to fix"}),
	}))

	problem := "Poor Communication"
	analysis := models.NewAnalysis(businesses[0].ID, models.AnalysisResult{ProblemType: &problem, UrgencyScore: 6, Summary: "rude staff", OutreachMessage: "hi"})
	require.NoError(t, s.InsertAnalysis(ctx, &analysis))
	dup := models.NewAnalysis(businesses[0].ID, models.AnalysisResult{UrgencyScore: 2})
	assert.ErrorIs(t, s.InsertAnalysis(ctx, &dup), store.ErrConflict)

	got, err := s.ListBusinesses(ctx, search.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Smile Studio", got[0].Name)
	assert.Equal(t, 4.7, *got[0].Rating)
	assert.Equal(t, phone, *got[0].Phone)
	assert.Nil(t, got[0].Address)
	assert.Equal(t, 30, got[0].ReviewCount)
	assert.Equal(t, models.DataSourceLive, got[0].DataSource)
	require.Len(t, got[0].Reviews, 2)
	require.NotNil(t, got[0].Analysis)
	assert.Equal(t, "Poor Communication", *got[0].Analysis.ProblemType)
	assert.Equal(t, 6, *got[0].Analysis.UrgencyScore)
	assert.Empty(t, got[1].Reviews)
	assert.Nil(t, got[1].Analysis)

	b, err := s.GetBusiness(ctx, businesses[0].ID)
	require.NoError(t, err)
	assert.Len(t, b.Reviews, 2)
	_, err = s.GetBusiness(ctx, uuid.New())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSQLiteReviewsKeepInsertOrder(t *testing.T) {
	ctx := context.Background()
	s := newSQLite(t)
	search := seedSearch(t, s, uuid.New(), time.Now().UTC())

	biz := models.NewBusiness(search.ID, models.BusinessCandidate{Name: "Acme Plumbing"}, models.DataSourceLive)
	require.NoError(t, s.InsertBusinesses(ctx, []models.Business{biz}))

	texts := []string{"zulu came late", "alpha never answered", "mike was great"}
	reviews := make([]models.Review, len(texts))
	for i, text := range texts {
		reviews[i] = models.NewReview(biz.ID, models.ReviewSnippet{Text: text})
	}
	require.NoError(t, s.InsertReviews(ctx, reviews))

	got, err := s.GetBusiness(ctx, biz.ID)
	require.NoError(t, err)
	require.Len(t, got.Reviews, 3)
	for i, r := range got.Reviews {
		assert.Equal(t, texts[i], r.Text)
	}
}

func TestSQLiteRejectsDuplicateBatchAtomically(t *testing.T) {
	ctx := context.Background()
	s := newSQLite(t)
	search := seedSearch(t, s, uuid.New(), time.Now().UTC())

	b := models.NewBusiness(search.ID, models.BusinessCandidate{Name: "Twice"}, models.DataSourceLive)
	other := models.NewBusiness(search.ID, models.BusinessCandidate{Name: "Once"}, models.DataSourceLive)
	err := s.InsertBusinesses(ctx, []models.Business{other, b, b})
	assert.ErrorIs(t, err, store.ErrConflict)

	got, err := s.ListBusinesses(ctx, search.ID)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSQLiteLeadsAndProfiles(t *testing.T) {
	ctx := context.Background()
	s := newSQLite(t)
	user := uuid.New()
	search := seedSearch(t, s, user, time.Now().UTC())
	business := models.NewBusiness(search.ID, models.BusinessCandidate{Name: "Smile Studio"}, models.DataSourceLive)
	require.NoError(t, s.InsertBusinesses(ctx, []models.Business{business}))

	lead := &models.SavedLead{UserID: user, BusinessID: business.ID, Status: models.LeadStatusNew}
	require.NoError(t, s.CreateLead(ctx, lead))
	assert.ErrorIs(t, s.CreateLead(ctx, &models.SavedLead{UserID: user, BusinessID: business.ID, Status: models.LeadStatusNew}), store.ErrConflict)

	require.NoError(t, lead.SetStatus(models.LeadStatusContacted, time.Now().UTC()))
	require.NoError(t, s.UpdateLead(ctx, lead))

	got, err := s.GetLead(ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LeadStatusContacted, got.Status)
	assert.NotNil(t, got.ContactedAt)
	require.NotNil(t, got.Business)
	assert.Equal(t, "Smile Studio", got.Business.Name)

	contacted := models.LeadStatusContacted
	leads, err := s.ListLeads(ctx, user, &contacted)
	require.NoError(t, err)
	assert.Len(t, leads, 1)

	require.NoError(t, s.DeleteLead(ctx, lead.ID))
	assert.ErrorIs(t, s.DeleteLead(ctx, lead.ID), store.ErrNotFound)

	require.NoError(t, s.SaveProfileServices(ctx, user, []string{"SEO"}))
	require.NoError(t, s.SaveProfileServices(ctx, user, []string{"SEO", "Web Design"}))
	p, err := s.GetProfile(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, []string{"SEO", "Web Design"}, p.Services)
	assert.False(t, p.OnboardingCompleted)
}

func TestPostgresInsertBusinessesRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := New(db, Postgres)
	searchID := uuid.New()
	businesses := []models.Business{
		models.NewBusiness(searchID, models.BusinessCandidate{Name: "A"}, models.DataSourceLive),
		models.NewBusiness(searchID, models.BusinessCandidate{Name: "B"}, models.DataSourceLive),
	}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO businesses .* VALUES \(\$1, \$2`).
		WithArgs(businesses[0].ID.String(), searchID.String(), "A", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), 0, "live", 0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO businesses`).WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err = s.InsertBusinesses(context.Background(), businesses)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCompleteSearchChecksExistence(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := New(db, Postgres)
	id := uuid.New()

	mock.ExpectExec(`UPDATE searches SET status = \$1`).
		WithArgs("completed", "synthetic", sqlmock.AnyArg(), id.String(), "processing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT .* FROM searches WHERE id = \$1`).
		WithArgs(id.String()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	err = s.CompleteSearch(context.Background(), id, models.DataSourceSynthetic)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDeleteLeadNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := New(db, Postgres)
	id := uuid.New()
	mock.ExpectExec(`DELETE FROM saved_leads WHERE id = \$1`).WithArgs(id.String()).WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, s.DeleteLead(context.Background(), id), store.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
