package transfer

import "context"

type Repository interface {
	Create(ctx context.Context, params CreateParams) (*Transfer, error)
	GetByID(ctx context.Context, userID, id string) (*Transfer, error)

	// ListByUserID returns transfers newest first with account names joined in
	ListByUserID(ctx context.Context, userID string) ([]*TransferWithNames, error)

	Delete(ctx context.Context, userID, id string) error
}
