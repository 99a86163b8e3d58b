package postgres

import (
	"context"
	"errors"

	"github.com/baharkarakas/sagepaypi/internal/models"
	"github.com/baharkarakas/sagepaypi/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type transactionsRepo struct{ pool *pgxpool.Pool }

const txColumns = `id, type, card_identifier_id, reference_transaction_id, vendor_tx_code, amount, currency, description,
  status_code, status, status_detail, transaction_id, retrieval_reference, bank_authorisation_code,
  acs_url, pareq, pares, secure_status, instruction, instruction_created_at, created_at, updated_at`

func scanTx(row pgx.Row) (models.Transaction, error) {
	var tx models.Transaction
	err := row.Scan(
		&tx.ID, &tx.Type, &tx.CardIdentifierID, &tx.ReferenceTransactionID, &tx.VendorTxCode,
		&tx.Amount, &tx.Currency, &tx.Description,
		&tx.StatusCode, &tx.Status, &tx.StatusDetail, &tx.TransactionID, &tx.RetrievalReference,
		&tx.BankAuthorisationCode, &tx.AcsURL, &tx.PaReq, &tx.PaRes, &tx.SecureStatus,
		&tx.Instruction, &tx.InstructionCreatedAt, &tx.CreatedAt, &tx.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return tx, repository.ErrNotFound
	}
	return tx, err
}

func (r *transactionsRepo) Create(ctx context.Context, tx models.Transaction) (models.Transaction, error) {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	if tx.VendorTxCode == "" {
		tx.VendorTxCode = uuid.NewString()
	}
	const q = `
INSERT INTO transactions (
  id, type, card_identifier_id, reference_transaction_id, vendor_tx_code, amount, currency, description
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
RETURNING ` + txColumns
	return scanTx(r.pool.QueryRow(ctx, q,
		tx.ID, tx.Type, tx.CardIdentifierID, tx.ReferenceTransactionID, tx.VendorTxCode,
		tx.Amount, tx.Currency, tx.Description,
	))
}

func (r *transactionsRepo) GetByID(ctx context.Context, id string) (models.Transaction, error) {
	if _, err := uuid.Parse(id); err != nil {
		return models.Transaction{}, repository.ErrNotFound
	}
	return scanTx(r.pool.QueryRow(ctx, `SELECT `+txColumns+` FROM transactions WHERE id=$1`, id))
}

func (r *transactionsRepo) List(ctx context.Context, limit, offset int) ([]models.Transaction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+txColumns+`
		   FROM transactions
		  ORDER BY created_at DESC
		  LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Transaction
	for rows.Next() {
		tx, err := scanTx(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

func (r *transactionsRepo) Apply(ctx context.Context, tx models.Transaction, resp models.TransactionResponse) (models.Transaction, error) {
	var out models.Transaction
	err := r.WithTx(ctx, func(dbtx pgx.Tx) error {
		if _, err := insertResponse(ctx, dbtx, resp); err != nil {
			return err
		}
		var err error
		out, err = scanTx(dbtx.QueryRow(ctx, `
UPDATE transactions SET
  status_code=$2, status=$3, status_detail=$4, transaction_id=$5, retrieval_reference=$6,
  bank_authorisation_code=$7, acs_url=$8, pareq=$9, pares=$10, secure_status=$11,
  instruction=$12, instruction_created_at=$13, updated_at=now()
WHERE id=$1
RETURNING `+txColumns,
			tx.ID, tx.StatusCode, tx.Status, tx.StatusDetail, tx.TransactionID, tx.RetrievalReference,
			tx.BankAuthorisationCode, tx.AcsURL, tx.PaReq, tx.PaRes, tx.SecureStatus,
			tx.Instruction, tx.InstructionCreatedAt,
		))
		return err
	})
	return out, err
}

// WithTx runs fn inside a single serializable database transaction.
func (r *transactionsRepo) WithTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.Serializable,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}
