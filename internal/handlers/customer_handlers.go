package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"ledger_app_echo/internal/models"
	"ledger_app_echo/internal/services"
)

type CustomerHandler struct {
	plans *services.PlanService
}

func NewCustomerHandler(plans *services.PlanService) *CustomerHandler {
	return &CustomerHandler{plans: plans}
}

type customerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// ListCustomers returns all customers
func (h *CustomerHandler) ListCustomers(c echo.Context) error {
	customers, err := h.plans.ListCustomers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, customers)
}

// StoreCustomer handles the creation of a new customer
func (h *CustomerHandler) StoreCustomer(c echo.Context) error {
	var req customerRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	customer, err := h.plans.CreateCustomer(c.Request().Context(), req.Name, req.Email, req.Phone)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, customer)
}

// ShowCustomer returns a customer together with its plans
func (h *CustomerHandler) ShowCustomer(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	customer, plans, err := h.plans.CustomerPlans(c.Request().Context(), id)
	if err != nil {
		return err
	}

	views := make([]PlanView, 0, len(plans))
	for _, p := range plans {
		views = append(views, PlanView{PaymentPlan: p, AmountDisplay: display(p.Amount)})
	}
	return c.JSON(http.StatusOK, struct {
		models.Customer
		Plans []PlanView `json:"plans"`
	}{*customer, views})
}
