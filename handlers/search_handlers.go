package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"leadscout/internal/export"
	"leadscout/internal/pipeline"
	"leadscout/internal/store"
	"leadscout/internal/worker"
	"leadscout/models"
	"leadscout/utils"
)

// CreateSearchRequest defines the expected body for starting a search.
type CreateSearchRequest struct {
	UserID       uuid.UUID `json:"user_id" validate:"required"`
	BusinessType string    `json:"business_type" validate:"required"`
	Location     string    `json:"location" validate:"required"`
	Radius       int       `json:"radius" validate:"gte=0"`
}

// SearchDetail is a search with its live progress.
type SearchDetail struct {
	Search   *models.SearchJob `json:"search"`
	Progress pipeline.Progress `json:"progress"`
}

// SearchSuccessResponse wraps a single search.
type SearchSuccessResponse struct {
	Status string           `json:"status"`
	Data   models.SearchJob `json:"data"`
}

// SearchListSuccessResponse wraps a list of searches.
type SearchListSuccessResponse struct {
	Status string             `json:"status"`
	Data   []models.SearchJob `json:"data"`
}

// SearchDetailSuccessResponse wraps a search with progress.
type SearchDetailSuccessResponse struct {
	Status string       `json:"status"`
	Data   SearchDetail `json:"data"`
}

// BusinessListSuccessResponse wraps the leads of a search.
type BusinessListSuccessResponse struct {
	Status string            `json:"status"`
	Data   []models.Business `json:"data"`
}

// ErrorResponse defines a common structure for error responses.
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// CreateSearch godoc
// @Summary Start a lead search
// @Description Creates a search job and runs discovery and analysis in the background.
// @Tags searches
// @Accept  json
// @Produce  json
// @Param   search body CreateSearchRequest true "Search to start"
// @Success 202 {object} SearchSuccessResponse "Search accepted"
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 409 {object} ErrorResponse "An identical search is already running"
// @Failure 503 {object} ErrorResponse "Search queue is full"
// @Failure 500 {object} ErrorResponse "Search could not be created"
// @Router /api/v1/searches [post]
func (h *ApplicationHandler) CreateSearch(c *fiber.Ctx) error {
	req := new(CreateSearchRequest)
	if err := c.BodyParser(req); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, fmt.Sprintf("Cannot parse search JSON: %v", err))
	}
	req.BusinessType = utils.SanitizeInput(req.BusinessType)
	req.Location = utils.SanitizeInput(req.Location)
	if err := utils.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Invalid search request",
			"errors":  utils.FormatValidationErrors(err),
		})
	}

	run, err := h.Searches.Start(c.UserContext(), pipeline.Request{
		UserID:       req.UserID,
		BusinessType: req.BusinessType,
		Location:     req.Location,
		Radius:       req.Radius,
	})
	switch {
	case errors.Is(err, pipeline.ErrDuplicateSearch):
		return utils.RespondWithError(c, fiber.StatusConflict, "An identical search is already running")
	case errors.Is(err, pipeline.ErrInvalidRequest):
		return utils.RespondWithError(c, fiber.StatusBadRequest, msgSearchInputRequired)
	case err != nil:
		h.Logger.WithError(err).Error("Could not start search")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not create search")
	}

	job := worker.NewJob(run.ID(), func(ctx context.Context) error {
		_, err := run.Execute(ctx)
		return err
	})
	if err := h.Jobs.SubmitJob(job); err != nil {
		run.Abandon(context.Background())
		h.Logger.WithError(err).WithField("search_id", run.ID()).Warn("Search not queued")
		return utils.RespondWithError(c, fiber.StatusServiceUnavailable, "Search queue is full, try again shortly")
	}

	h.Logger.WithFields(logrus.Fields{"search_id": run.ID(), "user_id": req.UserID}).Info("Search queued")
	return utils.RespondWithJSON(c, fiber.StatusAccepted, run.Search())
}

// ListSearches godoc
// @Summary List a user's searches
// @Description Returns the user's searches, newest first.
// @Tags searches
// @Produce  json
// @Param   user_id query string true "User ID"
// @Success 200 {object} SearchListSuccessResponse
// @Failure 400 {object} ErrorResponse "Missing or invalid user_id"
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/searches [get]
func (h *ApplicationHandler) ListSearches(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Query("user_id"))
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid user_id")
	}
	searches, err := h.Store.ListSearches(c.UserContext(), userID)
	if err != nil {
		h.Logger.WithError(err).Error("Could not list searches")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not retrieve searches")
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, searches)
}

// GetSearch godoc
// @Summary Get a search
// @Description Returns the search job and its progress.
// @Tags searches
// @Produce  json
// @Param   id path string true "Search ID"
// @Success 200 {object} SearchDetailSuccessResponse
// @Failure 400 {object} ErrorResponse "Invalid search ID"
// @Failure 404 {object} ErrorResponse "Search not found"
// @Router /api/v1/searches/{id} [get]
func (h *ApplicationHandler) GetSearch(c *fiber.Ctx) error {
	search, err := h.loadSearch(c)
	if err != nil {
		return err
	}

	detail := SearchDetail{Search: search}
	switch {
	case search.IsCompleted():
		detail.Progress = pipeline.Progress{Step: pipeline.StepCompleted, Percent: 100}
	default:
		if p, ok := h.Searches.Progress().Get(search.ID); ok {
			detail.Progress = p
		} else {
			detail.Progress = pipeline.Progress{Step: pipeline.StepCreated}
		}
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, detail)
}

// ListSearchLeads godoc
// @Summary List the leads of a search
// @Description Returns the search's businesses with reviews and analysis, filtered and sorted.
// @Tags searches
// @Produce  json
// @Param   id path string true "Search ID"
// @Param   urgency query string false "high, medium or low"
// @Param   problem query string false "Exact problem type"
// @Param   sort query string false "urgency-desc (default), urgency-asc, rating-asc or rating-desc"
// @Success 200 {object} BusinessListSuccessResponse
// @Failure 400 {object} ErrorResponse "Invalid filter"
// @Failure 404 {object} ErrorResponse "Search not found"
// @Router /api/v1/searches/{id}/leads [get]
func (h *ApplicationHandler) ListSearchLeads(c *fiber.Ctx) error {
	filter, err := ParseLeadFilter(c.Query("urgency"), c.Query("problem"), c.Query("sort"))
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, err.Error())
	}
	search, err := h.loadSearch(c)
	if err != nil {
		return err
	}
	businesses, err := h.Store.ListBusinesses(c.UserContext(), search.ID)
	if err != nil {
		h.Logger.WithError(err).WithField("search_id", search.ID).Error("Could not list businesses")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not retrieve leads")
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, filter.Apply(businesses))
}

// ExportSearch godoc
// @Summary Export a search as CSV
// @Description Downloads the search's leads and their analyses as a CSV file, narrowed and ordered like the leads listing.
// @Tags searches
// @Produce  text/csv
// @Param   id path string true "Search ID"
// @Param   urgency query string false "high, medium or low"
// @Param   problem query string false "Exact problem type"
// @Param   sort query string false "urgency-desc (default), urgency-asc, rating-asc or rating-desc"
// @Success 200 {file} file
// @Failure 400 {object} ErrorResponse "Invalid filter"
// @Failure 404 {object} ErrorResponse "Search not found or nothing to export"
// @Router /api/v1/searches/{id}/export [get]
func (h *ApplicationHandler) ExportSearch(c *fiber.Ctx) error {
	filter, err := ParseLeadFilter(c.Query("urgency"), c.Query("problem"), c.Query("sort"))
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, err.Error())
	}
	search, err := h.loadSearch(c)
	if err != nil {
		return err
	}
	businesses, err := h.Store.ListBusinesses(c.UserContext(), search.ID)
	if err != nil {
		h.Logger.WithError(err).WithField("search_id", search.ID).Error("Could not list businesses for export")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not export leads")
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, filter.Apply(businesses)); err != nil {
		if errors.Is(err, export.ErrNoLeads) {
			return utils.RespondWithError(c, fiber.StatusNotFound, "No data to export")
		}
		h.Logger.WithError(err).Error("Could not render CSV")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not export leads")
	}

	c.Attachment(export.Filename(search, h.now()))
	c.Set(fiber.HeaderContentType, export.ContentType)
	return c.Send(buf.Bytes())
}

// loadSearch resolves the :id param. Failures are *fiber.Error values for
// ErrorHandler to render.
func (h *ApplicationHandler) loadSearch(c *fiber.Ctx) (*models.SearchJob, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid search ID format")
	}
	search, err := h.Store.GetSearch(c.UserContext(), id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fiber.NewError(fiber.StatusNotFound, "Search not found")
	}
	if err != nil {
		h.Logger.WithError(err).WithField("search_id", id).Error("Could not load search")
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Could not retrieve search")
	}
	return search, nil
}
