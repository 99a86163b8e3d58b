package repository

import (
	"context"
	"errors"

	"github.com/baharkarakas/sagepaypi/internal/models"
)

var ErrNotFound = errors.New("not found")

type CardIdentifiers interface {
	Create(ctx context.Context, c models.CardIdentifier) (models.CardIdentifier, error)
	GetByID(ctx context.Context, id string) (models.CardIdentifier, error)
}

type Transactions interface {
	Create(ctx context.Context, tx models.Transaction) (models.Transaction, error)
	GetByID(ctx context.Context, id string) (models.Transaction, error)
	List(ctx context.Context, limit, offset int) ([]models.Transaction, error)

	// Apply appends resp to the response log and stores tx in one database
	// transaction, returning tx with its new updated_at.
	Apply(ctx context.Context, tx models.Transaction, resp models.TransactionResponse) (models.Transaction, error)
}

// Responses is the append-only gateway log.
type Responses interface {
	Create(ctx context.Context, r models.TransactionResponse) (models.TransactionResponse, error)
	ListByTransaction(ctx context.Context, transactionID string) ([]models.TransactionResponse, error)
}
