package fulfillment

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/craftmarket-backend/pkg/db/models"
)

// HistoryRepository is the append-only store for fulfillment audit rows.
type HistoryRepository interface {
	WithTx(tx *gorm.DB) HistoryRepository
	Append(ctx context.Context, row *models.StatusHistory) error
	ListByLine(ctx context.Context, lineID uuid.UUID) ([]models.StatusHistory, error)
}

type historyRepository struct {
	db *gorm.DB
}

// NewHistoryRepository binds the audit log to the provided DB handle.
func NewHistoryRepository(db *gorm.DB) HistoryRepository {
	return &historyRepository{db: db}
}

func (r *historyRepository) WithTx(tx *gorm.DB) HistoryRepository {
	if tx == nil {
		return r
	}
	return &historyRepository{db: tx}
}

// Append stamps the line's next sequence number and inserts the row. Callers run
// it in the transaction whose CAS update moved the line, which serializes writers;
// the unique (order_line_id, sequence) index rejects anything that slips through.
func (r *historyRepository) Append(ctx context.Context, row *models.StatusHistory) error {
	db := r.db.WithContext(ctx)
	var last int
	if err := db.Model(&models.StatusHistory{}).
		Select("COALESCE(MAX(sequence), 0)").
		Where("order_line_id = ?", row.OrderLineID).
		Scan(&last).Error; err != nil {
		return err
	}
	row.Sequence = last + 1
	return db.Create(row).Error
}

func (r *historyRepository) ListByLine(ctx context.Context, lineID uuid.UUID) ([]models.StatusHistory, error) {
	var rows []models.StatusHistory
	err := r.db.WithContext(ctx).
		Where("order_line_id = ?", lineID).
		Order("sequence ASC").
		Find(&rows).Error
	return rows, err
}
