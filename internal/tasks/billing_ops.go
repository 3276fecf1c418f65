package tasks

import (
	"context"
	"log/slog"

	"ledger_app_echo/internal/services"
)

// EnsureOpDef generates the instances of a month. args: month (optional, defaults to the current month)
type EnsureOpDef struct{}

// Name returns the unique identifier for this operation
func (o *EnsureOpDef) Name() string {
	return "ensure"
}

func (o *EnsureOpDef) Handler(billing *services.BillingService) Handler {
	return func(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
		month := stringArg(args, "month")
		if month == "" {
			month = billing.CurrentMonth()
		}
		res, err := billing.EnsureInstances(ctx, month)
		if err != nil {
			if res != nil {
				slog.Warn("Ensure finished with failures", "month", month, "failed", res.Failed)
			}
			return nil, err
		}
		return map[string]interface{}{
			"month":    res.Month,
			"created":  res.Created,
			"existing": res.Existing,
		}, nil
	}
}

// EnsureOp is the singleton instance of EnsureOpDef
var EnsureOp = &EnsureOpDef{}

// AlertsOpDef counts a month's unpaid instances per urgency. args: month (optional)
type AlertsOpDef struct{}

func (o *AlertsOpDef) Name() string {
	return "alerts"
}

func (o *AlertsOpDef) Handler(billing *services.BillingService) Handler {
	return func(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
		month := stringArg(args, "month")
		if month == "" {
			month = billing.CurrentMonth()
		}
		alerts, err := billing.ClassifyAlerts(ctx, month)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"month":         month,
			"upcoming":      len(alerts.Upcoming),
			"paymentWindow": len(alerts.PaymentWindow),
			"overdue":       len(alerts.Overdue),
		}, nil
	}
}

var AlertsOp = &AlertsOpDef{}

// CollectOpDef marks an instance paid. args: id, actor
type CollectOpDef struct{}

func (o *CollectOpDef) Name() string {
	return "collect"
}

func (o *CollectOpDef) Handler(billing *services.BillingService) Handler {
	return func(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
		id, err := uintArg(args, "id")
		if err != nil {
			return nil, err
		}
		res, err := billing.Collect(ctx, id, stringArg(args, "actor"))
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"status":         res.Status,
			"paid_at":        res.PaidAt,
			"transaction_id": res.TransactionID,
		}, nil
	}
}

var CollectOp = &CollectOpDef{}
