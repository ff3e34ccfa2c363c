package handlers

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"leadscout/internal/pipeline"
	"leadscout/internal/scriptgen"
	"leadscout/internal/store"
	"leadscout/internal/worker"
	"leadscout/models"
)

// BusinessSearcher is the live provider behind the search-businesses function.
type BusinessSearcher interface {
	Configured() bool
	Search(ctx context.Context, businessType, location string, limit int) ([]models.BusinessCandidate, error)
}

// ReviewAnalyzer classifies one business's reviews.
type ReviewAnalyzer interface {
	Analyze(ctx context.Context, businessName string, reviews []models.ReviewSnippet) (models.AnalysisResult, error)
}

// ScriptGenerator writes cold call scripts.
type ScriptGenerator interface {
	Generate(ctx context.Context, business *scriptgen.Business, userServices []string) (string, error)
}

// SearchStarter begins asynchronous search jobs.
type SearchStarter interface {
	Start(ctx context.Context, req pipeline.Request) (*pipeline.Run, error)
	Progress() *pipeline.Tracker
}

// JobSubmitter queues work for the dispatcher.
type JobSubmitter interface {
	SubmitJob(job worker.Job) error
}

// ApplicationHandler holds shared dependencies for handlers.
type ApplicationHandler struct {
	Live     BusinessSearcher
	Analyzer ReviewAnalyzer
	Scripts  ScriptGenerator
	Searches SearchStarter
	Jobs     JobSubmitter
	Store    store.Store
	Logger   *logrus.Logger
	now      func() time.Time
}

// NewApplicationHandler creates a new ApplicationHandler with the given dependencies.
func NewApplicationHandler(
	live BusinessSearcher,
	analyzer ReviewAnalyzer,
	scripts ScriptGenerator,
	searches SearchStarter,
	jobs JobSubmitter,
	st store.Store,
	logger *logrus.Logger,
) *ApplicationHandler {
	return &ApplicationHandler{
		Live:     live,
		Analyzer: analyzer,
		Scripts:  scripts,
		Searches: searches,
		Jobs:     jobs,
		Store:    st,
		Logger:   logger,
		now:      time.Now,
	}
}
