package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"ledger_app_echo/internal/models"
	"ledger_app_echo/internal/services"
)

// PublicHandler serves unauthenticated lookups by public reference
type PublicHandler struct {
	billing *services.BillingService
}

func NewPublicHandler(billing *services.BillingService) *PublicHandler {
	return &PublicHandler{billing: billing}
}

// PublicInstance is the subset of an instance safe to show a customer
type PublicInstance struct {
	UUID          string                `json:"uuid"`
	PlanTitle     string                `json:"plan_title"`
	Month         string                `json:"month"`
	DueAt         time.Time             `json:"due_at"`
	Amount        int64                 `json:"amount"`
	AmountDisplay string                `json:"amount_display"`
	Status        models.InstanceStatus `json:"status"`
	PaidAt        *time.Time            `json:"paid_at,omitempty"`
}

// ShowInstance returns an instance by its UUID
func (h *PublicHandler) ShowInstance(c echo.Context) error {
	ref := c.Param("uuid")
	if ref == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid instance reference")
	}

	inst, err := h.billing.InstanceByUUID(c.Request().Context(), ref)
	if err != nil {
		return err
	}

	var title string
	if inst.Plan != nil {
		title = inst.Plan.Title
	}
	return c.JSON(http.StatusOK, PublicInstance{
		UUID:          inst.UUID,
		PlanTitle:     title,
		Month:         inst.MonthKey,
		DueAt:         inst.DueAt,
		Amount:        inst.Amount,
		AmountDisplay: display(inst.Amount),
		Status:        inst.Status,
		PaidAt:        inst.PaidAt,
	})
}
