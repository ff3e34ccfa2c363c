package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"leadscout/internal/scriptgen"
	"leadscout/internal/store"
	"leadscout/models"
	"leadscout/utils"
)

// CreateLeadRequest saves a business to the user's CRM.
type CreateLeadRequest struct {
	UserID     uuid.UUID `json:"user_id" validate:"required"`
	BusinessID uuid.UUID `json:"business_id" validate:"required"`
	Notes      *string   `json:"notes,omitempty"`
}

// UpdateLeadRequest defines the fields that can be changed on a lead.
// Omitted fields are left as they are.
type UpdateLeadRequest struct {
	Status         *string `json:"status,omitempty"`
	Notes          *string `json:"notes,omitempty"`
	ColdCallScript *string `json:"cold_call_script,omitempty"`
}

// LeadSuccessResponse wraps a single saved lead.
type LeadSuccessResponse struct {
	Status string           `json:"status"`
	Data   models.SavedLead `json:"data"`
}

// LeadListSuccessResponse wraps a list of saved leads.
type LeadListSuccessResponse struct {
	Status string             `json:"status"`
	Data   []models.SavedLead `json:"data"`
}

// CreateLead godoc
// @Summary Save a lead
// @Description Saves a discovered business to the user's CRM with status "new".
// @Tags leads
// @Accept  json
// @Produce  json
// @Param   lead body CreateLeadRequest true "Lead to save"
// @Success 201 {object} LeadSuccessResponse "Lead saved"
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 404 {object} ErrorResponse "Business not found"
// @Failure 409 {object} ErrorResponse "Business already saved"
// @Router /api/v1/leads [post]
func (h *ApplicationHandler) CreateLead(c *fiber.Ctx) error {
	req := new(CreateLeadRequest)
	if err := c.BodyParser(req); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, fmt.Sprintf("Cannot parse lead JSON: %v", err))
	}
	if err := utils.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Invalid lead request",
			"errors":  utils.FormatValidationErrors(err),
		})
	}

	lead := &models.SavedLead{
		ID:         uuid.New(),
		UserID:     req.UserID,
		BusinessID: req.BusinessID,
		Status:     models.LeadStatusNew,
		Notes:      trimmed(req.Notes),
	}
	err := h.Store.CreateLead(c.UserContext(), lead)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return utils.RespondWithError(c, fiber.StatusNotFound, "Business not found")
	case errors.Is(err, store.ErrConflict):
		return utils.RespondWithError(c, fiber.StatusConflict, "Lead already saved")
	case err != nil:
		h.Logger.WithError(err).Error("Could not save lead")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not save lead")
	}

	h.Logger.WithFields(logrus.Fields{"lead_id": lead.ID, "business_id": lead.BusinessID}).Info("Lead saved")
	return utils.RespondWithJSON(c, fiber.StatusCreated, lead)
}

// ListLeads godoc
// @Summary List saved leads
// @Description Returns the user's saved leads, newest first, each with its business.
// @Tags leads
// @Produce  json
// @Param   user_id query string true "User ID"
// @Param   status query string false "new or contacted"
// @Success 200 {object} LeadListSuccessResponse
// @Failure 400 {object} ErrorResponse "Invalid user_id or status"
// @Router /api/v1/leads [get]
func (h *ApplicationHandler) ListLeads(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Query("user_id"))
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid user_id")
	}
	var status *models.LeadStatus
	if raw := c.Query("status"); raw != "" && raw != filterAll {
		s, err := models.ParseLeadStatus(raw)
		if err != nil {
			return utils.RespondWithError(c, fiber.StatusBadRequest, err.Error())
		}
		status = &s
	}

	leads, err := h.Store.ListLeads(c.UserContext(), userID, status)
	if err != nil {
		h.Logger.WithError(err).Error("Could not list leads")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not retrieve leads")
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, leads)
}

// GetLead godoc
// @Summary Get a saved lead
// @Tags leads
// @Produce  json
// @Param   id path string true "Lead ID"
// @Success 200 {object} LeadSuccessResponse
// @Failure 404 {object} ErrorResponse "Lead not found"
// @Router /api/v1/leads/{id} [get]
func (h *ApplicationHandler) GetLead(c *fiber.Ctx) error {
	lead, err := h.loadLead(c)
	if err != nil {
		return err
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, lead)
}

// UpdateLead godoc
// @Summary Update a saved lead
// @Description Changes notes, the stored script or the status. Status moves between "new" and "contacted"; contacted_at follows it.
// @Tags leads
// @Accept  json
// @Produce  json
// @Param   id path string true "Lead ID"
// @Param   lead body UpdateLeadRequest true "Fields to change"
// @Success 200 {object} LeadSuccessResponse
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 404 {object} ErrorResponse "Lead not found"
// @Failure 422 {object} ErrorResponse "Status change not allowed"
// @Router /api/v1/leads/{id} [patch]
func (h *ApplicationHandler) UpdateLead(c *fiber.Ctx) error {
	req := new(UpdateLeadRequest)
	if err := c.BodyParser(req); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, fmt.Sprintf("Cannot parse update JSON: %v", err))
	}
	if req.Status == nil && req.Notes == nil && req.ColdCallScript == nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "No fields to update")
	}

	lead, err := h.loadLead(c)
	if err != nil {
		return err
	}

	if req.Status != nil {
		next, err := models.ParseLeadStatus(*req.Status)
		if err != nil {
			return utils.RespondWithError(c, fiber.StatusUnprocessableEntity, err.Error())
		}
		if err := lead.SetStatus(next, h.now().UTC()); err != nil {
			return utils.RespondWithError(c, fiber.StatusUnprocessableEntity, err.Error())
		}
	}
	if req.Notes != nil {
		lead.Notes = trimmed(req.Notes)
	}
	if req.ColdCallScript != nil {
		lead.ColdCallScript = req.ColdCallScript
	}

	if err := h.Store.UpdateLead(c.UserContext(), lead); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.RespondWithError(c, fiber.StatusNotFound, "Lead not found")
		}
		h.Logger.WithError(err).WithField("lead_id", lead.ID).Error("Could not update lead")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not update lead")
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, lead)
}

// DeleteLead godoc
// @Summary Delete a saved lead
// @Tags leads
// @Param   id path string true "Lead ID"
// @Success 204 "Lead deleted"
// @Failure 404 {object} ErrorResponse "Lead not found"
// @Router /api/v1/leads/{id} [delete]
func (h *ApplicationHandler) DeleteLead(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid lead ID format")
	}
	err = h.Store.DeleteLead(c.UserContext(), id)
	if errors.Is(err, store.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "Lead not found")
	}
	if err != nil {
		h.Logger.WithError(err).WithField("lead_id", id).Error("Could not delete lead")
		return fiber.NewError(fiber.StatusInternalServerError, "Could not delete lead")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GenerateLeadScript godoc
// @Summary Generate and store a cold call script for a lead
// @Description Uses the lead's business, its analysis and the owner's services, then saves the script on the lead.
// @Tags leads
// @Produce  json
// @Param   id path string true "Lead ID"
// @Success 200 {object} LeadSuccessResponse
// @Failure 404 {object} ErrorResponse "Lead not found"
// @Failure 402 {object} ErrorResponse "AI credits exhausted"
// @Failure 429 {object} ErrorResponse "Rate limited"
// @Failure 500 {object} ErrorResponse "Script generation failed"
// @Router /api/v1/leads/{id}/script [post]
func (h *ApplicationHandler) GenerateLeadScript(c *fiber.Ctx) error {
	lead, err := h.loadLead(c)
	if err != nil {
		return err
	}
	if lead.Business == nil {
		return utils.RespondWithError(c, fiber.StatusNotFound, "Business not found")
	}

	var services []string
	profile, err := h.Store.GetProfile(c.UserContext(), lead.UserID)
	switch {
	case err == nil:
		services = profile.Services
	case !errors.Is(err, store.ErrNotFound):
		h.Logger.WithError(err).WithField("user_id", lead.UserID).Warn("Could not load profile, using default services")
	}

	script, err := h.Scripts.Generate(c.UserContext(), ScriptSubject(lead.Business), services)
	if err != nil {
		status, msg := scriptFailure(err)
		h.Logger.WithError(err).WithField("lead_id", lead.ID).Error("Lead script generation failed")
		return utils.RespondWithError(c, status, msg)
	}

	lead.ColdCallScript = &script
	if err := h.Store.UpdateLead(c.UserContext(), lead); err != nil {
		h.Logger.WithError(err).WithField("lead_id", lead.ID).Error("Could not store lead script")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not save script")
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, lead)
}

// ScriptSubject describes a stored business to the script generator.
func ScriptSubject(b *models.Business) *scriptgen.Business {
	subject := &scriptgen.Business{Name: b.Name, Phone: b.Phone, Address: b.Address}
	if a := b.Analysis; a != nil {
		subject.ProblemType = a.ProblemType
		if a.Summary != "" {
			summary := a.Summary
			subject.Summary = &summary
		}
	}
	return subject
}

func (h *ApplicationHandler) loadLead(c *fiber.Ctx) (*models.SavedLead, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid lead ID format")
	}
	lead, err := h.Store.GetLead(c.UserContext(), id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fiber.NewError(fiber.StatusNotFound, "Lead not found")
	}
	if err != nil {
		h.Logger.WithError(err).WithField("lead_id", id).Error("Could not load lead")
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Could not retrieve lead")
	}
	return lead, nil
}
