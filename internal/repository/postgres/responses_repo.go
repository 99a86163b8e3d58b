package postgres

import (
	"context"

	"github.com/baharkarakas/sagepaypi/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type responsesRepo struct{ pool *pgxpool.Pool }

// querier is satisfied by both the pool and an open pgx.Tx.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func insertResponse(ctx context.Context, q querier, r models.TransactionResponse) (models.TransactionResponse, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	data := r.Data
	if len(data) == 0 {
		data = []byte("{}")
	}
	err := q.QueryRow(ctx,
		`INSERT INTO transaction_responses(id, transaction_id, step, status_code, data)
		 VALUES($1,$2,$3,$4,$5::text::jsonb)
		 RETURNING created_at`,
		r.ID, r.TransactionID, r.Step, r.StatusCode, string(data),
	).Scan(&r.CreatedAt)
	return r, err
}

func (r *responsesRepo) Create(ctx context.Context, resp models.TransactionResponse) (models.TransactionResponse, error) {
	return insertResponse(ctx, r.pool, resp)
}

func (r *responsesRepo) ListByTransaction(ctx context.Context, transactionID string) ([]models.TransactionResponse, error) {
	if _, err := uuid.Parse(transactionID); err != nil {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx,
		`SELECT id, transaction_id, created_at, step, status_code, data::text
		   FROM transaction_responses
		  WHERE transaction_id=$1
		  ORDER BY created_at DESC`,
		transactionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.TransactionResponse
	for rows.Next() {
		var resp models.TransactionResponse
		var data string
		if err := rows.Scan(&resp.ID, &resp.TransactionID, &resp.CreatedAt, &resp.Step, &resp.StatusCode, &data); err != nil {
			return nil, err
		}
		resp.Data = []byte(data)
		out = append(out, resp)
	}
	return out, rows.Err()
}
