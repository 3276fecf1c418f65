package tasks

import (
	"context"

	"ledger_app_echo/internal/services"
)

// ArchiveOpDef voids a transaction and reverses its balances. args: id, actor
type ArchiveOpDef struct{}

func (o *ArchiveOpDef) Name() string {
	return "archive"
}

func (o *ArchiveOpDef) Handler(ledgerService *services.LedgerService) Handler {
	return func(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
		id, err := uintArg(args, "id")
		if err != nil {
			return nil, err
		}
		res, err := ledgerService.ArchiveTransaction(ctx, id, stringArg(args, "actor"))
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"transaction_id":  res.TransactionID,
			"reversed":        res.Reversed,
			"skipped_buckets": res.SkippedBuckets,
		}, nil
	}
}

var ArchiveOp = &ArchiveOpDef{}

// RolloverOpDef collects a subscription and moves it to the next month. args: id, actor
type RolloverOpDef struct{}

func (o *RolloverOpDef) Name() string {
	return "rollover"
}

func (o *RolloverOpDef) Handler(subscriptions *services.SubscriptionService) Handler {
	return func(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
		id, err := uintArg(args, "id")
		if err != nil {
			return nil, err
		}
		res, err := subscriptions.CollectSubscription(ctx, id, stringArg(args, "actor"))
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"subscription_id":   res.SubscriptionID,
			"amount_collected":  res.AmountCollected,
			"next_payment_date": res.NextPaymentDate,
		}, nil
	}
}

var RolloverOp = &RolloverOpDef{}
