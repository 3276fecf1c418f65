package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"ledger_app_echo/internal/ledger"
	"ledger_app_echo/internal/models"
	"ledger_app_echo/internal/services"
)

type SubscriptionHandler struct {
	subscriptions *services.SubscriptionService
}

func NewSubscriptionHandler(subscriptions *services.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptions: subscriptions}
}

// SubscriptionView is a subscription with display amounts
type SubscriptionView struct {
	models.Subscription
	AmountDisplay    string `json:"amount_display"`
	DueAmountDisplay string `json:"due_amount_display"`
}

func subscriptionView(s *models.Subscription) SubscriptionView {
	return SubscriptionView{Subscription: *s, AmountDisplay: display(s.Amount), DueAmountDisplay: display(s.DueAmount())}
}

// StoreSubscription handles the creation of a new subscription
func (h *SubscriptionHandler) StoreSubscription(c echo.Context) error {
	var req services.SubscriptionInput
	if err := bind(c, &req); err != nil {
		return err
	}
	sub, err := h.subscriptions.CreateSubscription(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, subscriptionView(sub))
}

type partialPaymentRequest struct {
	Paid         int64     `json:"paid"`
	RemainingDue time.Time `json:"remaining_due"`
}

// RecordPartialPayment registers a short payment
func (h *SubscriptionHandler) RecordPartialPayment(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req partialPaymentRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	sub, err := h.subscriptions.RecordPartialPayment(c.Request().Context(), id, req.Paid, req.RemainingDue, actor(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, subscriptionView(sub))
}

// CollectSubscription records payment and rolls the subscription forward
func (h *SubscriptionHandler) CollectSubscription(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	res, err := h.subscriptions.CollectSubscription(c.Request().Context(), id, actor(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"subscription_id":          res.SubscriptionID,
		"amount_collected":         res.AmountCollected,
		"amount_collected_display": ledger.Display(res.AmountCollected),
		"previous_due_date":        res.PreviousDueDate,
		"next_payment_date":        res.NextPaymentDate,
	})
}
