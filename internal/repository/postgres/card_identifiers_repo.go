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

type cardIdentifiersRepo struct{ pool *pgxpool.Pool }

const cardColumns = `id, created_at, first_name, last_name, billing_address_1, billing_address_2, billing_city,
  billing_country, billing_postal_code, billing_state, reusable, merchant_session_key, card_identifier,
  card_identifier_expiry, card_type, last_four_digits, expiry_date`

func (r *cardIdentifiersRepo) Create(ctx context.Context, c models.CardIdentifier) (models.CardIdentifier, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO card_identifiers(
		   id, first_name, last_name, billing_address_1, billing_address_2, billing_city, billing_country,
		   billing_postal_code, billing_state, reusable, merchant_session_key, card_identifier,
		   card_identifier_expiry, card_type, last_four_digits, expiry_date)
		 VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
		 RETURNING created_at`,
		c.ID, c.FirstName, c.LastName, c.BillingAddress1, c.BillingAddress2, c.BillingCity, c.BillingCountry,
		c.BillingPostalCode, c.BillingState, c.Reusable, c.MerchantSessionKey, c.CardIdentifier,
		c.CardIdentifierExpiry, c.CardType, c.LastFourDigits, c.ExpiryDate,
	).Scan(&c.CreatedAt)
	return c, err
}

func (r *cardIdentifiersRepo) GetByID(ctx context.Context, id string) (models.CardIdentifier, error) {
	var c models.CardIdentifier
	if _, err := uuid.Parse(id); err != nil {
		return c, repository.ErrNotFound
	}
	err := r.pool.QueryRow(ctx, `SELECT `+cardColumns+` FROM card_identifiers WHERE id=$1`, id).Scan(
		&c.ID, &c.CreatedAt, &c.FirstName, &c.LastName, &c.BillingAddress1, &c.BillingAddress2, &c.BillingCity,
		&c.BillingCountry, &c.BillingPostalCode, &c.BillingState, &c.Reusable, &c.MerchantSessionKey,
		&c.CardIdentifier, &c.CardIdentifierExpiry, &c.CardType, &c.LastFourDigits, &c.ExpiryDate,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return c, repository.ErrNotFound
	}
	return c, err
}
