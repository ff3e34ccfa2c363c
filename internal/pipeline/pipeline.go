// Package pipeline drives one search from job creation to completion:
// fetch businesses, persist them with their reviews, analyze each business
// concurrently and mark the job completed.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"leadscout/internal/aiclient"
	"leadscout/internal/analyzer"
	"leadscout/internal/lock"
	"leadscout/internal/metrics"
	"leadscout/internal/source"
	"leadscout/internal/store"
	"leadscout/models"
)

var (
	ErrDuplicateSearch = errors.New("an identical search is already in progress")
	ErrInvalidRequest  = errors.New("business type and location are required")
)

// StepError marks a fatal failure at one step. Side effects of earlier steps
// are kept.
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string { return fmt.Sprintf("search step %s: %v", e.Step, e.Err) }
func (e *StepError) Unwrap() error { return e.Err }

// FailureCode classifies a tolerated per-business analysis failure.
type FailureCode string

const (
	CodeTransportFailed FailureCode = "ANALYSIS_TRANSPORT_FAILED"
	CodeRateLimited     FailureCode = "ANALYSIS_RATE_LIMITED"
	CodeQuotaExhausted  FailureCode = "ANALYSIS_QUOTA_EXHAUSTED"
	CodeNoReviews       FailureCode = "ANALYSIS_NO_REVIEWS"
	CodePersistFailed   FailureCode = "ANALYSIS_PERSIST_FAILED"
)

// Classify maps an analyzer error onto a failure code.
func Classify(err error) FailureCode {
	switch {
	case errors.Is(err, aiclient.ErrRateLimited):
		return CodeRateLimited
	case errors.Is(err, aiclient.ErrQuotaExhausted):
		return CodeQuotaExhausted
	case errors.Is(err, analyzer.ErrNoReviews):
		return CodeNoReviews
	default:
		return CodeTransportFailed
	}
}

// Analyzer is the slice of analyzer.Analyzer the pipeline calls.
type Analyzer interface {
	Analyze(ctx context.Context, businessName string, reviews []models.ReviewSnippet) (models.AnalysisResult, error)
}

const (
	DefaultResultLimit = 10
	DefaultDedupWindow = 2 * time.Minute
)

type Options struct {
	ResultLimit int
	// DedupWindow bounds how long an identical search is refused. The lock
	// is released earlier when the run finishes.
	DedupWindow time.Duration
	// AnalysisConcurrency caps parallel analyses; zero means one goroutine
	// per business.
	AnalysisConcurrency int
}

// Request is one user-initiated search.
type Request struct {
	UserID       uuid.UUID `json:"user_id" validate:"required"`
	BusinessType string    `json:"business_type" validate:"required"`
	Location     string    `json:"location" validate:"required"`
	Radius       int       `json:"radius" validate:"gte=0"`
}

// Failure records one business that ended without an analysis.
type Failure struct {
	BusinessID uuid.UUID   `json:"business_id"`
	Business   string      `json:"business"`
	Code       FailureCode `json:"code"`
	Err        string      `json:"error"`
}

// Report summarizes a finished run.
type Report struct {
	Search         *models.SearchJob `json:"search"`
	DataSource     models.DataSource `json:"data_source"`
	FallbackReason string            `json:"fallback_reason,omitempty"`
	Businesses     int               `json:"businesses"`
	Reviews        int               `json:"reviews"`
	Analyses       int               `json:"analyses"`
	Failures       []Failure         `json:"failures,omitempty"`
	Duration       time.Duration     `json:"duration"`
}

type Orchestrator struct {
	store    store.SearchStore
	source   source.Adapter
	analyzer Analyzer
	locker   lock.Locker
	progress *Tracker
	opts     Options
	log      logrus.FieldLogger
}

// New wires an orchestrator. A nil locker disables deduplication and a nil
// tracker disables progress reporting.
func New(st store.SearchStore, src source.Adapter, an Analyzer, locker lock.Locker, progress *Tracker, opts Options, log logrus.FieldLogger) *Orchestrator {
	if opts.ResultLimit <= 0 {
		opts.ResultLimit = DefaultResultLimit
	}
	if opts.DedupWindow <= 0 {
		opts.DedupWindow = DefaultDedupWindow
	}
	return &Orchestrator{
		store:    st,
		source:   src,
		analyzer: an,
		locker:   locker,
		progress: progress,
		opts:     opts,
		log:      log,
	}
}

// Progress exposes the tracker handed to New.
func (o *Orchestrator) Progress() *Tracker { return o.progress }

// Run performs a whole search synchronously.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Report, error) {
	run, err := o.Start(ctx, req)
	if err != nil {
		return nil, err
	}
	return run.Execute(ctx)
}

// Start claims the request's fingerprint and persists the SearchJob. The
// returned Run must be executed or abandoned to release the fingerprint.
func (o *Orchestrator) Start(ctx context.Context, req Request) (*Run, error) {
	req.BusinessType = strings.TrimSpace(req.BusinessType)
	req.Location = strings.TrimSpace(req.Location)
	if req.BusinessType == "" || req.Location == "" {
		return nil, ErrInvalidRequest
	}

	fp := Fingerprint(req.UserID, req.BusinessType, req.Location, req.Radius)
	release := lock.Release(func(context.Context) error { return nil })
	if o.locker != nil {
		r, err := o.locker.Acquire(ctx, "search:"+fp, o.opts.DedupWindow)
		if errors.Is(err, lock.ErrHeld) {
			return nil, ErrDuplicateSearch
		}
		if err != nil {
			return nil, &StepError{Step: StepCreated, Err: err}
		}
		release = r
	}

	search := &models.SearchJob{
		ID:           uuid.New(),
		UserID:       req.UserID,
		BusinessType: req.BusinessType,
		Location:     req.Location,
		Radius:       req.Radius,
		Status:       models.SearchStatusProcessing,
		Fingerprint:  fp,
	}
	if err := o.store.CreateSearch(ctx, search); err != nil {
		_ = release(context.Background())
		return nil, &StepError{Step: StepCreated, Err: err}
	}
	o.progress.set(search.ID, StepCreated, 10)

	return &Run{
		o:       o,
		search:  search,
		release: release,
		started: time.Now(),
		log: o.log.WithFields(logrus.Fields{
			"search_id":     search.ID,
			"business_type": search.BusinessType,
			"location":      search.Location,
		}),
	}, nil
}

// Run is a search whose job row exists and whose remaining steps have not
// run yet.
type Run struct {
	o       *Orchestrator
	search  *models.SearchJob
	release lock.Release
	once    sync.Once
	started time.Time
	log     logrus.FieldLogger
}

func (r *Run) Search() *models.SearchJob { return r.search }

func (r *Run) ID() string { return r.search.ID.String() }

// Abandon releases the fingerprint without running the remaining steps.
// The job row stays in processing.
func (r *Run) Abandon(ctx context.Context) {
	r.unlock(ctx)
}

func (r *Run) unlock(ctx context.Context) {
	r.once.Do(func() {
		if err := r.release(ctx); err != nil {
			r.log.WithError(err).Warn("Failed to release search fingerprint")
		}
	})
}

// Execute runs steps 2 through 6.
func (r *Run) Execute(ctx context.Context) (*Report, error) {
	defer r.unlock(context.Background())

	o, search := r.o, r.search
	report := &Report{Search: search}

	batch, err := o.source.Fetch(ctx, search.BusinessType, search.Location, o.opts.ResultLimit)
	if err != nil {
		return nil, r.fail(StepBusinessesFetched, err)
	}
	report.DataSource = batch.Source
	report.FallbackReason = batch.FallbackReason
	log := r.log.WithField("data_source", batch.Source)
	o.progress.set(search.ID, StepBusinessesFetched, 20)

	businesses := make([]models.Business, len(batch.Candidates))
	for i, c := range batch.Candidates {
		businesses[i] = models.NewBusiness(search.ID, c, batch.Source)
	}
	if err := o.store.InsertBusinesses(ctx, businesses); err != nil {
		return nil, r.fail(StepBusinessesPersisted, err)
	}
	report.Businesses = len(businesses)
	o.progress.set(search.ID, StepBusinessesPersisted, 30)

	// Reviews follow their candidate by position.
	var reviews []models.Review
	for i, c := range batch.Candidates {
		for _, snippet := range c.Reviews {
			review := models.NewReview(businesses[i].ID, snippet)
			reviews = append(reviews, review)
			businesses[i].Reviews = append(businesses[i].Reviews, review)
		}
	}
	if err := o.store.InsertReviews(ctx, reviews); err != nil {
		return nil, r.fail(StepReviewsPersisted, err)
	}
	report.Reviews = len(reviews)
	o.progress.set(search.ID, StepReviewsPersisted, 40)

	report.Analyses, report.Failures = r.analyzeAll(ctx, businesses)

	o.progress.set(search.ID, StepFinalizing, 95)
	if err := o.store.CompleteSearch(ctx, search.ID, batch.Source); err != nil {
		return nil, r.fail(StepCompleted, err)
	}
	now := time.Now().UTC()
	ds := batch.Source
	search.Status = models.SearchStatusCompleted
	search.DataSource = &ds
	search.CompletedAt = &now
	o.progress.set(search.ID, StepCompleted, 100)

	report.Duration = time.Since(r.started)
	metrics.SearchesTotal.WithLabelValues(string(batch.Source)).Inc()
	metrics.SearchDuration.Observe(report.Duration.Seconds())

	entry := log.WithFields(logrus.Fields{
		"businesses":      report.Businesses,
		"reviews":         report.Reviews,
		"analyses":        report.Analyses,
		"failures":        len(report.Failures),
		"fallback_reason": report.FallbackReason,
		"duration_ms":     report.Duration.Milliseconds(),
	})
	// Placeholder leads are not worth outreach, so surface them louder.
	if batch.IsSynthetic() {
		entry.Warn("Search completed with synthetic data")
	} else {
		entry.Info("Search completed")
	}
	return report, nil
}

func (r *Run) fail(step Step, err error) error {
	r.log.WithError(err).WithField("step", step).Error("Search aborted")
	return &StepError{Step: step, Err: err}
}

// analyzeAll fans out one analysis per business. Branches never return an
// error so a failing business cannot cancel its siblings.
func (r *Run) analyzeAll(ctx context.Context, businesses []models.Business) (int, []Failure) {
	o := r.o
	var (
		g        errgroup.Group
		mu       sync.Mutex
		done     int
		analyses int
		failures []Failure
	)
	if o.opts.AnalysisConcurrency > 0 {
		g.SetLimit(o.opts.AnalysisConcurrency)
	}
	o.progress.analyzed(r.search.ID, 0, len(businesses))

	for i := range businesses {
		b := &businesses[i]
		g.Go(func() error {
			failure := r.analyzeOne(ctx, b)

			mu.Lock()
			defer mu.Unlock()
			done++
			if failure != nil {
				failures = append(failures, *failure)
			} else {
				analyses++
			}
			o.progress.analyzed(r.search.ID, done, len(businesses))
			return nil
		})
	}
	_ = g.Wait()
	return analyses, failures
}

func (r *Run) analyzeOne(ctx context.Context, b *models.Business) *Failure {
	snippets := make([]models.ReviewSnippet, len(b.Reviews))
	for i, review := range b.Reviews {
		snippets[i] = review.Snippet()
	}

	result, err := r.o.analyzer.Analyze(ctx, b.Name, snippets)
	if err != nil {
		return r.failure(b, Classify(err), err)
	}
	analysis := models.NewAnalysis(b.ID, result)
	if err := r.o.store.InsertAnalysis(ctx, &analysis); err != nil {
		return r.failure(b, CodePersistFailed, err)
	}
	b.Analysis = &analysis
	return nil
}

func (r *Run) failure(b *models.Business, code FailureCode, err error) *Failure {
	metrics.AnalysisFailures.WithLabelValues(string(code)).Inc()
	r.log.WithFields(logrus.Fields{
		"business_id": b.ID,
		"business":    b.Name,
		"error_code":  code,
	}).WithError(err).Warn("Business left without analysis")
	return &Failure{BusinessID: b.ID, Business: b.Name, Code: code, Err: err.Error()}
}
