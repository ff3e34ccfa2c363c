package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"leadscout/internal/aiclient"
	"leadscout/internal/analyzer"
	"leadscout/internal/scriptgen"
	"leadscout/internal/source"
	"leadscout/models"
	"leadscout/utils"
)

const (
	msgSearchInputRequired = "Business type and location are required"
	msgFirecrawlMissing    = "Firecrawl connector not configured"
	msgSearchFailed        = "Search failed"
	msgNoReviews           = "No business or reviews provided"
	msgAIMissing           = "AI service not configured"
	msgRateLimited         = "Rate limit exceeded. Please try again in a moment."
	msgCreditsExhausted    = "AI credits exhausted. Please add more credits."
	msgAnalysisFailed      = "AI analysis failed"
	msgNoAnalysis          = "No analysis returned"
	msgBusinessRequired    = "Business data is required"
	msgScriptFailed        = "Script generation failed"
	msgNoScript            = "No script generated"
)

// SearchBusinessesRequest is the body of the search-businesses function.
type SearchBusinessesRequest struct {
	BusinessType string `json:"businessType"`
	Location     string `json:"location"`
	Limit        int    `json:"limit"`
}

// SearchBusinessesResponse lists the live candidates found.
type SearchBusinessesResponse struct {
	Success      bool                       `json:"success"`
	Businesses   []models.BusinessCandidate `json:"businesses"`
	TotalResults int                        `json:"totalResults"`
}

// SearchBusinessesError is the failure body of the search-businesses function.
type SearchBusinessesError struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// FunctionError is the failure body of the AI functions.
type FunctionError struct {
	Error string `json:"error"`
}

// ReviewedBusiness is the business submitted for analysis.
type ReviewedBusiness struct {
	Name    string                 `json:"name"`
	Reviews []models.ReviewSnippet `json:"reviews"`
}

// AnalyzeReviewsRequest is the body of the analyze-reviews function.
type AnalyzeReviewsRequest struct {
	Business *ReviewedBusiness `json:"business"`
}

// AnalyzeReviewsResponse wraps the verdict.
type AnalyzeReviewsResponse struct {
	Analysis models.AnalysisResult `json:"analysis"`
}

// GenerateScriptRequest is the body of the generate-cold-script function.
type GenerateScriptRequest struct {
	Business     *scriptgen.Business `json:"business"`
	UserServices []string            `json:"userServices"`
}

// GenerateScriptResponse carries the generated script.
type GenerateScriptResponse struct {
	Script string `json:"script"`
}

// SearchBusinesses godoc
// @Summary Search live businesses
// @Description Queries the live search provider for businesses of a type in a location and extracts their reviews.
// @Tags functions
// @Accept  json
// @Produce  json
// @Param   request body SearchBusinessesRequest true "Business type, location and optional limit"
// @Success 200 {object} SearchBusinessesResponse
// @Failure 400 {object} SearchBusinessesError "Missing business type or location"
// @Failure 500 {object} SearchBusinessesError "Provider not configured or search failed"
// @Router /functions/v1/search-businesses [post]
func (h *ApplicationHandler) SearchBusinesses(c *fiber.Ctx) error {
	req := new(SearchBusinessesRequest)
	if err := c.BodyParser(req); err != nil {
		h.Logger.WithError(err).Warn("Cannot parse search-businesses body")
		return searchError(c, fiber.StatusBadRequest, msgSearchInputRequired)
	}
	req.BusinessType = utils.SanitizeInput(req.BusinessType)
	req.Location = utils.SanitizeInput(req.Location)
	if req.BusinessType == "" || req.Location == "" {
		return searchError(c, fiber.StatusBadRequest, msgSearchInputRequired)
	}
	if h.Live == nil || !h.Live.Configured() {
		h.Logger.Error("FIRECRAWL_API_KEY not configured")
		return searchError(c, fiber.StatusInternalServerError, msgFirecrawlMissing)
	}

	candidates, err := h.Live.Search(c.UserContext(), req.BusinessType, req.Location, req.Limit)
	switch {
	case errors.Is(err, source.ErrNotConfigured):
		return searchError(c, fiber.StatusInternalServerError, msgFirecrawlMissing)
	case err != nil:
		h.Logger.WithError(err).WithFields(logrus.Fields{
			"business_type": req.BusinessType,
			"location":      req.Location,
		}).Error("Business search failed")
		return searchError(c, fiber.StatusInternalServerError, msgSearchFailed)
	}
	if candidates == nil {
		candidates = []models.BusinessCandidate{}
	}

	return c.JSON(SearchBusinessesResponse{
		Success:      true,
		Businesses:   candidates,
		TotalResults: len(candidates),
	})
}

// AnalyzeReviews godoc
// @Summary Analyze a business's reviews
// @Description Classifies communication problems in the reviews and drafts an outreach message.
// @Tags functions
// @Accept  json
// @Produce  json
// @Param   request body AnalyzeReviewsRequest true "Business name and reviews"
// @Success 200 {object} AnalyzeReviewsResponse
// @Failure 400 {object} FunctionError "No business or reviews provided"
// @Failure 402 {object} FunctionError "AI credits exhausted"
// @Failure 429 {object} FunctionError "Rate limited"
// @Failure 500 {object} FunctionError "AI not configured or analysis failed"
// @Router /functions/v1/analyze-reviews [post]
func (h *ApplicationHandler) AnalyzeReviews(c *fiber.Ctx) error {
	req := new(AnalyzeReviewsRequest)
	if err := c.BodyParser(req); err != nil || req.Business == nil || len(req.Business.Reviews) == 0 {
		return utils.RespondWithFunctionError(c, fiber.StatusBadRequest, msgNoReviews)
	}

	result, err := h.Analyzer.Analyze(c.UserContext(), req.Business.Name, req.Business.Reviews)
	if err != nil {
		if errors.Is(err, analyzer.ErrNoReviews) {
			return utils.RespondWithFunctionError(c, fiber.StatusBadRequest, msgNoReviews)
		}
		if errors.Is(err, aiclient.ErrEmptyResponse) {
			return utils.RespondWithFunctionError(c, fiber.StatusInternalServerError, msgNoAnalysis)
		}
		status, msg := aiFailure(err, msgAnalysisFailed)
		h.Logger.WithError(err).WithField("business", req.Business.Name).Error("Review analysis failed")
		return utils.RespondWithFunctionError(c, status, msg)
	}

	return c.JSON(AnalyzeReviewsResponse{Analysis: result})
}

// GenerateColdScript godoc
// @Summary Generate a cold call script
// @Description Writes a cold call script for the business tailored to the caller's services.
// @Tags functions
// @Accept  json
// @Produce  json
// @Param   request body GenerateScriptRequest true "Business details and caller services"
// @Success 200 {object} GenerateScriptResponse
// @Failure 400 {object} FunctionError "Business data is required"
// @Failure 402 {object} FunctionError "AI credits exhausted"
// @Failure 429 {object} FunctionError "Rate limited"
// @Failure 500 {object} FunctionError "AI not configured, generation failed or empty script"
// @Router /functions/v1/generate-cold-script [post]
func (h *ApplicationHandler) GenerateColdScript(c *fiber.Ctx) error {
	req := new(GenerateScriptRequest)
	if err := c.BodyParser(req); err != nil || req.Business == nil {
		return utils.RespondWithFunctionError(c, fiber.StatusBadRequest, msgBusinessRequired)
	}
	req.Business.Name = utils.SanitizeInput(req.Business.Name)
	if err := utils.ValidateStruct(req.Business); err != nil {
		return utils.RespondWithFunctionError(c, fiber.StatusBadRequest, msgBusinessRequired)
	}

	script, err := h.Scripts.Generate(c.UserContext(), req.Business, utils.SanitizeList(req.UserServices))
	if err != nil {
		status, msg := scriptFailure(err)
		h.Logger.WithError(err).WithField("business", req.Business.Name).Error("Script generation failed")
		return utils.RespondWithFunctionError(c, status, msg)
	}
	return c.JSON(GenerateScriptResponse{Script: script})
}

func searchError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(SearchBusinessesError{Success: false, Error: msg})
}

// aiFailure maps a gateway error onto the status and message shown to the
// caller. generic is used for everything that is not a known condition.
func aiFailure(err error, generic string) (int, string) {
	switch {
	case errors.Is(err, aiclient.ErrNotConfigured):
		return fiber.StatusInternalServerError, msgAIMissing
	case errors.Is(err, aiclient.ErrRateLimited):
		return fiber.StatusTooManyRequests, msgRateLimited
	case errors.Is(err, aiclient.ErrQuotaExhausted):
		return fiber.StatusPaymentRequired, msgCreditsExhausted
	default:
		return fiber.StatusInternalServerError, generic
	}
}

func scriptFailure(err error) (int, string) {
	switch {
	case errors.Is(err, scriptgen.ErrNoBusiness):
		return fiber.StatusBadRequest, msgBusinessRequired
	case errors.Is(err, scriptgen.ErrNoScript):
		return fiber.StatusInternalServerError, msgNoScript
	default:
		return aiFailure(err, msgScriptFailed)
	}
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
