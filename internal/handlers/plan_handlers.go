package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"ledger_app_echo/internal/models"
	"ledger_app_echo/internal/services"
)

type PlanHandler struct {
	plans *services.PlanService
}

func NewPlanHandler(plans *services.PlanService) *PlanHandler {
	return &PlanHandler{plans: plans}
}

// PlanView is a plan with its display amount
type PlanView struct {
	models.PaymentPlan
	AmountDisplay string `json:"amount_display"`
}

// StorePlan handles the creation of a new plan
func (h *PlanHandler) StorePlan(c echo.Context) error {
	var req services.PlanInput
	if err := bind(c, &req); err != nil {
		return err
	}

	plan, err := h.plans.CreatePlan(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, PlanView{PaymentPlan: *plan, AmountDisplay: display(plan.Amount)})
}

type updateAmountRequest struct {
	Amount int64 `json:"amount"`
}

// UpdatePlanAmount changes the amount used for future instances
func (h *PlanHandler) UpdatePlanAmount(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req updateAmountRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	plan, err := h.plans.UpdatePlanAmount(c.Request().Context(), id, req.Amount, actor(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, PlanView{PaymentPlan: *plan, AmountDisplay: display(plan.Amount)})
}

// ArchivePlan stops a plan from generating instances
func (h *PlanHandler) ArchivePlan(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.plans.ArchivePlan(c.Request().Context(), id, actor(c)); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Schedule previews the next due dates of a plan; ?count= defaults to 12
func (h *PlanHandler) Schedule(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	count := 12
	if raw := c.QueryParam("count"); raw != "" {
		if count, err = strconv.Atoi(raw); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid count")
		}
	}

	dates, err := h.plans.PlanSchedule(c.Request().Context(), id, count)
	if err != nil {
		return err
	}
	if dates == nil {
		dates = []time.Time{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"plan_id": id, "due_dates": dates})
}
