package tasks

import (
	"ledger_app_echo/internal/services"
)

// Services are the engine services operations run against
type Services struct {
	Billing       *services.BillingService
	Ledger        *services.LedgerService
	Subscriptions *services.SubscriptionService
}

// DefineOperations registers all available operations
func DefineOperations(r *Registry, svc Services) {
	// Register billing operations
	r.Register(EnsureOp.Name(), EnsureOp.Handler(svc.Billing))
	r.Register(AlertsOp.Name(), AlertsOp.Handler(svc.Billing))
	r.Register(CollectOp.Name(), CollectOp.Handler(svc.Billing))

	// Register ledger operations
	r.Register(ArchiveOp.Name(), ArchiveOp.Handler(svc.Ledger))
	r.Register(RolloverOp.Name(), RolloverOp.Handler(svc.Subscriptions))
}
