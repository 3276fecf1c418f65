package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"ledger_app_echo/internal/models"
	"ledger_app_echo/internal/services"
)

type InstanceHandler struct {
	billing *services.BillingService
}

func NewInstanceHandler(billing *services.BillingService) *InstanceHandler {
	return &InstanceHandler{billing: billing}
}

// InstanceView is a payment instance with its display amount
type InstanceView struct {
	models.PaymentInstance
	AmountDisplay string `json:"amount_display"`
}

func instanceViews(instances []models.PaymentInstance) []InstanceView {
	views := make([]InstanceView, 0, len(instances))
	for _, inst := range instances {
		views = append(views, InstanceView{PaymentInstance: inst, AmountDisplay: display(inst.Amount)})
	}
	return views
}

// AlertsView mirrors services.Alerts with display amounts
type AlertsView struct {
	Month         string         `json:"month"`
	Upcoming      []InstanceView `json:"upcoming"`
	PaymentWindow []InstanceView `json:"paymentWindow"`
	Overdue       []InstanceView `json:"overdue"`
}

// month reads ?month=, defaulting to the current billing month
func (h *InstanceHandler) month(c echo.Context) string {
	if m := c.QueryParam("month"); m != "" {
		return m
	}
	return h.billing.CurrentMonth()
}

// EnsureInstances generates the month's instances for every active plan
func (h *InstanceHandler) EnsureInstances(c echo.Context) error {
	res, err := h.billing.EnsureInstances(c.Request().Context(), h.month(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// ListInstances lists a month's instances, optionally filtered by status
func (h *InstanceHandler) ListInstances(c echo.Context) error {
	instances, err := h.billing.ListInstances(c.Request().Context(), h.month(c), models.InstanceStatus(c.QueryParam("status")))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, instanceViews(instances))
}

// Alerts returns the month's unpaid instances grouped by urgency
func (h *InstanceHandler) Alerts(c echo.Context) error {
	month := h.month(c)
	alerts, err := h.billing.ClassifyAlerts(c.Request().Context(), month)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, AlertsView{
		Month:         month,
		Upcoming:      instanceViews(alerts.Upcoming),
		PaymentWindow: instanceViews(alerts.PaymentWindow),
		Overdue:       instanceViews(alerts.Overdue),
	})
}

// Collect marks an instance paid and posts its income
func (h *InstanceHandler) Collect(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	res, err := h.billing.Collect(c.Request().Context(), id, actor(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}
