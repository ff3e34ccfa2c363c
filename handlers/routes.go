package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// FunctionsPrefix is where the browser-callable functions are mounted.
const FunctionsPrefix = "/functions/v1"

// FunctionCORS matches the headers browser clients send to the function endpoints.
var FunctionCORS = cors.Config{
	AllowOrigins: "*",
	AllowHeaders: "authorization, x-client-info, apikey, content-type",
}

// RegisterRoutes mounts every handler on app.
func (h *ApplicationHandler) RegisterRoutes(app fiber.Router) {
	app.Get("/health", h.Health)

	functions := app.Group(FunctionsPrefix, cors.New(FunctionCORS))
	functions.Post("/search-businesses", h.SearchBusinesses)
	functions.Post("/analyze-reviews", h.AnalyzeReviews)
	functions.Post("/generate-cold-script", h.GenerateColdScript)

	apiV1 := app.Group("/api/v1")

	searches := apiV1.Group("/searches")
	searches.Post("", h.CreateSearch)
	searches.Get("", h.ListSearches)
	searches.Get("/:id", h.GetSearch)
	searches.Get("/:id/leads", h.ListSearchLeads)
	searches.Get("/:id/export", h.ExportSearch)

	leads := apiV1.Group("/leads")
	leads.Post("", h.CreateLead)
	leads.Get("", h.ListLeads)
	leads.Get("/:id", h.GetLead)
	leads.Patch("/:id", h.UpdateLead)
	leads.Delete("/:id", h.DeleteLead)
	leads.Post("/:id/script", h.GenerateLeadScript)

	apiV1.Get("/profiles/:user_id/services", h.GetServices)
	apiV1.Put("/profiles/:user_id/services", h.PutServices)
}

// Health godoc
// @Summary Health check
// @Description Reports whether the store is reachable.
// @Tags health
// @Produce  json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /health [get]
func (h *ApplicationHandler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		h.Logger.WithError(err).Warn("Health check failed")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":  "error",
			"message": "store unavailable",
		})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "ok",
		"message": "leadscout is healthy",
	})
}
