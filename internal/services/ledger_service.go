package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ledger_app_echo/internal/ledger"
	"ledger_app_echo/internal/models"
)

// LedgerService posts and voids ledger transactions and keeps bucket balances
type LedgerService struct {
	db       *gorm.DB
	splitter *ledger.Splitter
	owners   map[string]uint
	cfg      EngineConfig
}

// NewLedgerService creates a ledger service. owners maps a bucket to the user
// whose balance row it feeds; buckets not listed use owner 0.
func NewLedgerService(db *gorm.DB, splitter *ledger.Splitter, owners map[string]uint, cfg EngineConfig) *LedgerService {
	if splitter == nil {
		splitter = ledger.NewSplitter(nil)
	}
	if owners == nil {
		owners = map[string]uint{}
	}
	return &LedgerService{db: db, splitter: splitter, owners: owners, cfg: cfg.withDefaults()}
}

// Split previews an allocation without touching storage
func (s *LedgerService) Split(amount int64, ratios []ledger.Ratio) ([]ledger.Allocation, error) {
	return s.splitter.Split(amount, ratios)
}

// PostInput describes a transaction to post
type PostInput struct {
	Kind       models.TransactionKind
	Amount     int64 // minor units, positive
	OccurredAt time.Time
	CustomerID *uint
	Note       string
	// Ratios overrides the configured bucket table for this posting
	Ratios []ledger.Ratio
}

// PostTransaction records a transaction, its splits and the balance updates atomically
func (s *LedgerService) PostTransaction(ctx context.Context, in PostInput) (*models.Transaction, error) {
	var txn *models.Transaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		txn, err = s.post(tx, in, true)
		return err
	})
	if err != nil {
		return nil, ledger.FromStore(err, "post transaction")
	}
	return txn, nil
}

// post writes the transaction inside tx. With applySplits false the
// transaction is recorded without splits or balance changes.
func (s *LedgerService) post(tx *gorm.DB, in PostInput, applySplits bool) (*models.Transaction, error) {
	if in.Kind != models.TransactionKindIncome && in.Kind != models.TransactionKindExpense {
		return nil, ledger.Validation("unknown transaction kind %q", in.Kind)
	}
	if in.Amount <= 0 {
		return nil, ledger.Validation("amount must be positive, got %d", in.Amount)
	}
	if in.OccurredAt.IsZero() {
		in.OccurredAt = s.cfg.ClockFunc()
	}

	txn := models.Transaction{
		Reference:  uuid.NewString(),
		Kind:       in.Kind,
		Amount:     in.Amount,
		OccurredAt: in.OccurredAt,
		CustomerID: in.CustomerID,
		Note:       in.Note,
	}
	if err := tx.Create(&txn).Error; err != nil {
		return nil, err
	}
	if !applySplits {
		return &txn, nil
	}

	allocations, err := s.splitter.Split(txn.SignedAmount(), in.Ratios)
	if err != nil {
		return nil, err
	}
	splits := make([]models.TransactionSplit, 0, len(allocations))
	for _, a := range allocations {
		splits = append(splits, models.TransactionSplit{
			TransactionID: txn.ID,
			Bucket:        a.Bucket,
			Percentage:    a.Percentage.String(),
			Amount:        a.Amount,
			OwnerUserID:   s.owners[a.Bucket],
		})
	}
	if len(splits) > 0 {
		if err := tx.Create(&splits).Error; err != nil {
			return nil, err
		}
	}

	for _, sp := range splits {
		if err := applyBalanceDelta(tx, sp.Bucket, sp.OwnerUserID, sp.Amount); err != nil {
			return nil, err
		}
	}

	txn.Splits = splits
	return &txn, nil
}

// applyBalanceDelta adds delta to a bucket balance, creating the row on first use
func applyBalanceDelta(tx *gorm.DB, bucket string, owner uint, delta int64) error {
	row := models.Balance{Bucket: bucket, OwnerUserID: owner}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "bucket"}, {Name: "owner_user_id"}},
		DoNothing: true,
	}).Create(&row).Error; err != nil {
		return err
	}
	return tx.Model(&models.Balance{}).
		Where("bucket = ? AND owner_user_id = ?", bucket, owner).
		Update("amount", gorm.Expr("amount + ?", delta)).Error
}

// ArchiveResult reports what a reversal touched
type ArchiveResult struct {
	TransactionID uint      `json:"transaction_id"`
	ArchivedAt    time.Time `json:"archived_at"`
	Reversed      int       `json:"reversed"`
	// SkippedBuckets had no balance row to reverse against
	SkippedBuckets []string `json:"skipped_buckets,omitempty"`
}

// ArchiveTransaction voids a transaction and subtracts each of its splits from
// the matching balance. The archive flag is claimed with a conditional update
// so concurrent callers cannot both reverse the same transaction.
func (s *LedgerService) ArchiveTransaction(ctx context.Context, id uint, actor string) (*ArchiveResult, error) {
	if actor == "" {
		return nil, ledger.Validation("actor is required to archive a transaction")
	}
	now := s.cfg.ClockFunc()
	result := &ArchiveResult{TransactionID: id, ArchivedAt: now}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Transaction{}).
			Where("id = ? AND archived_at IS NULL", id).
			Updates(map[string]interface{}{"archived_at": now, "archived_by": actor})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var existing models.Transaction
			if err := tx.First(&existing, id).Error; err != nil {
				return ledger.FromStore(err, "transaction")
			}
			return ledger.Validation("transaction %d is already archived", id)
		}

		var splits []models.TransactionSplit
		if err := tx.Where("transaction_id = ?", id).Order("id ASC").Find(&splits).Error; err != nil {
			return err
		}

		for _, sp := range splits {
			upd := tx.Model(&models.Balance{}).
				Where("bucket = ? AND owner_user_id = ?", sp.Bucket, sp.OwnerUserID).
				Update("amount", gorm.Expr("amount - ?", sp.Amount))
			if upd.Error != nil {
				return upd.Error
			}
			if upd.RowsAffected == 0 {
				slog.Error("Balance row missing during reversal",
					"code", ledger.CodeConsistency,
					"transaction_id", id,
					"bucket", sp.Bucket,
					"owner_user_id", sp.OwnerUserID,
					"amount", sp.Amount,
				)
				result.SkippedBuckets = append(result.SkippedBuckets, sp.Bucket)
				continue
			}
			result.Reversed++
		}

		return recordAudit(tx, models.AuditTransactionArchived, "transaction", id, actor, now, map[string]interface{}{
			"reversed":        result.Reversed,
			"skipped_buckets": result.SkippedBuckets,
		})
	})
	if err != nil {
		return nil, ledger.FromStore(err, "archive transaction")
	}
	return result, nil
}

// TransactionFilter narrows ListTransactions
type TransactionFilter struct {
	CustomerID      *uint
	Kind            models.TransactionKind
	IncludeArchived bool
	Limit           int
}

// ListTransactions returns transactions newest first with their splits
func (s *LedgerService) ListTransactions(ctx context.Context, f TransactionFilter) ([]models.Transaction, error) {
	query := s.db.WithContext(ctx).Model(&models.Transaction{}).Preload("Splits")
	if f.CustomerID != nil {
		query = query.Where("customer_id = ?", *f.CustomerID)
	}
	if f.Kind != "" {
		query = query.Where("kind = ?", f.Kind)
	}
	if !f.IncludeArchived {
		query = query.Where("archived_at IS NULL")
	}
	limit := f.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var txns []models.Transaction
	if err := query.Order("occurred_at desc, id desc").Limit(limit).Find(&txns).Error; err != nil {
		return nil, ledger.FromStore(err, "list transactions")
	}
	return txns, nil
}

// ListBalances returns every bucket balance
func (s *LedgerService) ListBalances(ctx context.Context) ([]models.Balance, error) {
	var balances []models.Balance
	if err := s.db.WithContext(ctx).Order("bucket asc, owner_user_id asc").Find(&balances).Error; err != nil {
		return nil, ledger.FromStore(err, "list balances")
	}
	return balances, nil
}
