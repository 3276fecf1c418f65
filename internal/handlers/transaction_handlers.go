package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"ledger_app_echo/internal/ledger"
	"ledger_app_echo/internal/models"
	"ledger_app_echo/internal/services"
)

type LedgerHandler struct {
	ledger *services.LedgerService
}

func NewLedgerHandler(ledgerService *services.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledger: ledgerService}
}

// SplitRequest previews an allocation. Amount is in minor units; AmountMajor,
// when set, is a decimal string in major units and takes precedence.
type SplitRequest struct {
	Amount      int64          `json:"amount"`
	AmountMajor string         `json:"amount_major"`
	Ratios      []ledger.Ratio `json:"ratios"`
}

type AllocationView struct {
	Bucket        string          `json:"bucket"`
	Percentage    decimal.Decimal `json:"percentage"`
	Amount        int64           `json:"amount"`
	AmountDisplay string          `json:"amount_display"`
}

type SplitResponse struct {
	Amount        int64            `json:"amount"`
	AmountDisplay string           `json:"amount_display"`
	Allocations   []AllocationView `json:"allocations"`
}

// Split previews how an amount would be divided across buckets
func (h *LedgerHandler) Split(c echo.Context) error {
	var req SplitRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	amount := req.Amount
	if req.AmountMajor != "" {
		major, err := decimal.NewFromString(req.AmountMajor)
		if err != nil {
			return ledger.Validation("invalid amount_major %q", req.AmountMajor)
		}
		if amount, err = ledger.MajorToMinor(major); err != nil {
			return err
		}
	}
	for _, r := range req.Ratios {
		if r.Bucket == "" {
			return ledger.Validation("ratio bucket is required")
		}
	}

	allocs, err := h.ledger.Split(amount, req.Ratios)
	if err != nil {
		return err
	}
	views := make([]AllocationView, 0, len(allocs))
	for _, a := range allocs {
		views = append(views, AllocationView{
			Bucket:        a.Bucket,
			Percentage:    a.Percentage,
			Amount:        a.Amount,
			AmountDisplay: display(a.Amount),
		})
	}
	return c.JSON(http.StatusOK, SplitResponse{Amount: amount, AmountDisplay: display(amount), Allocations: views})
}

// PostTransactionRequest is the body of POST /api/transactions
type PostTransactionRequest struct {
	Kind       models.TransactionKind `json:"kind"`
	Amount     int64                  `json:"amount"`
	OccurredAt *time.Time             `json:"occurred_at"`
	CustomerID *uint                  `json:"customer_id"`
	Note       string                 `json:"note"`
	Ratios     []ledger.Ratio         `json:"ratios"`
}

// TransactionView is a transaction with display amounts
type TransactionView struct {
	models.Transaction
	AmountDisplay string `json:"amount_display"`
}

// PostTransaction records a manual income or expense
func (h *LedgerHandler) PostTransaction(c echo.Context) error {
	var req PostTransactionRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	in := services.PostInput{
		Kind:       req.Kind,
		Amount:     req.Amount,
		CustomerID: req.CustomerID,
		Note:       req.Note,
		Ratios:     req.Ratios,
	}
	if req.OccurredAt != nil {
		in.OccurredAt = *req.OccurredAt
	}

	txn, err := h.ledger.PostTransaction(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, TransactionView{Transaction: *txn, AmountDisplay: display(txn.Amount)})
}

// ListTransactions lists transactions, newest first
func (h *LedgerHandler) ListTransactions(c echo.Context) error {
	customerID, err := queryUint(c, "customer_id")
	if err != nil {
		return err
	}
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid limit")
		}
	}

	txns, err := h.ledger.ListTransactions(c.Request().Context(), services.TransactionFilter{
		CustomerID:      customerID,
		Kind:            models.TransactionKind(c.QueryParam("kind")),
		IncludeArchived: c.QueryParam("include_archived") == "true",
		Limit:           limit,
	})
	if err != nil {
		return err
	}

	views := make([]TransactionView, 0, len(txns))
	for _, t := range txns {
		views = append(views, TransactionView{Transaction: t, AmountDisplay: display(t.Amount)})
	}
	return c.JSON(http.StatusOK, views)
}

// ArchiveTransaction voids a transaction and reverses its balance effect
func (h *LedgerHandler) ArchiveTransaction(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	res, err := h.ledger.ArchiveTransaction(c.Request().Context(), id, actor(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// BalanceView is a bucket balance with its display amount
type BalanceView struct {
	models.Balance
	AmountDisplay string `json:"amount_display"`
}

// ListBalances returns every bucket balance
func (h *LedgerHandler) ListBalances(c echo.Context) error {
	balances, err := h.ledger.ListBalances(c.Request().Context())
	if err != nil {
		return err
	}
	views := make([]BalanceView, 0, len(balances))
	for _, b := range balances {
		views = append(views, BalanceView{Balance: b, AmountDisplay: display(b.Amount)})
	}
	return c.JSON(http.StatusOK, views)
}
