package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"leadscout/internal/store"
	"leadscout/utils"
)

const maxServices = 20

// ServicesRequest replaces the services an operator offers.
type ServicesRequest struct {
	Services []string `json:"services" validate:"max=20,dive,max=100"`
}

// ServicesResponse lists the services an operator offers.
type ServicesResponse struct {
	Status string   `json:"status"`
	Data   []string `json:"data"`
}

// GetServices godoc
// @Summary Get an operator's services
// @Description Returns the services used to tailor cold call scripts. Unknown users have none.
// @Tags profiles
// @Produce  json
// @Param   user_id path string true "User ID"
// @Success 200 {object} ServicesResponse
// @Failure 400 {object} ErrorResponse "Invalid user ID"
// @Router /api/v1/profiles/{user_id}/services [get]
func (h *ApplicationHandler) GetServices(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("user_id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid user ID format")
	}
	services := []string{}
	profile, err := h.Store.GetProfile(c.UserContext(), userID)
	switch {
	case err == nil:
		if profile.Services != nil {
			services = profile.Services
		}
	case !errors.Is(err, store.ErrNotFound):
		h.Logger.WithError(err).WithField("user_id", userID).Error("Could not load profile")
		return fiber.NewError(fiber.StatusInternalServerError, "Could not retrieve services")
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, services)
}

// PutServices godoc
// @Summary Replace an operator's services
// @Tags profiles
// @Accept  json
// @Produce  json
// @Param   user_id path string true "User ID"
// @Param   services body ServicesRequest true "Services offered"
// @Success 200 {object} ServicesResponse
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Router /api/v1/profiles/{user_id}/services [put]
func (h *ApplicationHandler) PutServices(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("user_id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid user ID format")
	}
	req := new(ServicesRequest)
	if err := c.BodyParser(req); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, fmt.Sprintf("Cannot parse services JSON: %v", err))
	}
	if err := utils.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": fmt.Sprintf("At most %d services of up to 100 characters are allowed", maxServices),
			"errors":  utils.FormatValidationErrors(err),
		})
	}

	services := utils.SanitizeList(req.Services)
	if err := h.Store.SaveProfileServices(c.UserContext(), userID, services); err != nil {
		h.Logger.WithError(err).WithField("user_id", userID).Error("Could not save services")
		return fiber.NewError(fiber.StatusInternalServerError, "Could not save services")
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, services)
}
