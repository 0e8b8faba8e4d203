package prediction

import "context"

// Repository persists prediction records.
type Repository interface {
	Insert(ctx context.Context, record Record) error
	GetByID(ctx context.Context, predictionID string) (Record, bool, error)
	// ListPending returns up to limit pending records ordered by creation
	// time and id, strictly after the cursor.
	ListPending(ctx context.Context, after PendingCursor, limit int) ([]Record, error)
	UpdateResolution(ctx context.Context, predictionID string, resolution Resolution) error
	// SettleIfPending applies the settlement only while the record is still
	// pending and reports whether it did.
	SettleIfPending(ctx context.Context, settlement Settlement) (bool, error)
}
