package postgres

import (
	repo "github.com/baharkarakas/sagepaypi/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repositories struct {
	CardIdentifiers repo.CardIdentifiers
	Transactions    repo.Transactions
	Responses       repo.Responses
}

func NewRepositories(pool *pgxpool.Pool) Repositories {
	return Repositories{
		CardIdentifiers: &cardIdentifiersRepo{pool},
		Transactions:    &transactionsRepo{pool},
		Responses:       &responsesRepo{pool},
	}
}
