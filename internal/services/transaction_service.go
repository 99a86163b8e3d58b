package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/baharkarakas/sagepaypi/internal/events"
	"github.com/baharkarakas/sagepaypi/internal/gateway"
	"github.com/baharkarakas/sagepaypi/internal/metrics"
	"github.com/baharkarakas/sagepaypi/internal/models"
	repo "github.com/baharkarakas/sagepaypi/internal/repository"
	"github.com/baharkarakas/sagepaypi/internal/tokens"
)

// Gateway is the part of gateway.Client the transaction lifecycle needs.
type Gateway interface {
	SubmitTransaction(ctx context.Context, req gateway.TransactionRequest) (gateway.Response, error)
	SubmitInstruction(ctx context.Context, transactionID string, req gateway.InstructionRequest) (gateway.Response, error)
	Submit3DSecure(ctx context.Context, transactionID string, req gateway.SecureRequest) (gateway.Response, error)
	TransactionOutcome(ctx context.Context, transactionID string) (gateway.Response, error)
}

type TransactionService struct {
	gw        Gateway
	cards     repo.CardIdentifiers
	txs       repo.Transactions
	responses repo.Responses
	tokens    *tokens.Generator
	events    events.Publisher
	now       func() time.Time
}

func NewTransactionService(gw Gateway, c repo.CardIdentifiers, t repo.Transactions, r repo.Responses, tok *tokens.Generator, pub events.Publisher) *TransactionService {
	if pub == nil {
		pub = events.Noop{}
	}
	return &TransactionService{gw: gw, cards: c, txs: t, responses: r, tokens: tok, events: pub, now: time.Now}
}

// WithClock replaces the clock used for the day windows.
func (s *TransactionService) WithClock(now func() time.Time) *TransactionService {
	s.now = now
	return s
}

// ----------------- Reads -----------------

func (s *TransactionService) Get(ctx context.Context, id string) (models.Transaction, error) {
	return s.txs.GetByID(ctx, id)
}

func (s *TransactionService) List(ctx context.Context, limit, offset int) ([]models.Transaction, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.txs.List(ctx, limit, offset)
}

// Responses returns the gateway log of a transaction, newest first.
func (s *TransactionService) Responses(ctx context.Context, id string) ([]models.TransactionResponse, error) {
	if _, err := s.txs.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.responses.ListByTransaction(ctx, id)
}

// ----------------- Create -----------------

// Create validates and stores tx. It does not submit it.
func (s *TransactionService) Create(ctx context.Context, tx models.Transaction) (models.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return models.Transaction{}, err
	}
	if tx.Type.NeedsCard() {
		if _, err := s.cards.GetByID(ctx, *tx.CardIdentifierID); err != nil {
			return models.Transaction{}, choiceError("card_identifier", err)
		}
	}
	if tx.ReferenceTransactionID != nil {
		if _, err := s.txs.GetByID(ctx, *tx.ReferenceTransactionID); err != nil {
			return models.Transaction{}, choiceError("reference_transaction", err)
		}
	}

	created, err := s.txs.Create(ctx, tx)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	slog.Info("transaction created", "transaction", created.ID, "type", created.Type, "amount", created.Amount, "currency", created.Currency)
	return created, nil
}

func choiceError(field string, err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return models.FieldErrors{field: "Select a valid choice. That choice is not one of the available choices."}
	}
	return err
}

// ----------------- Submission -----------------

// Submit sends a stored transaction to the gateway. Calling it twice makes two
// remote attempts under the same vendor code.
func (s *TransactionService) Submit(ctx context.Context, id string) (models.Transaction, error) {
	tx, err := s.txs.GetByID(ctx, id)
	if err != nil {
		return models.Transaction{}, err
	}
	return s.submit(ctx, tx)
}

func (s *TransactionService) submit(ctx context.Context, tx models.Transaction) (models.Transaction, error) {
	var (
		card *models.CardIdentifier
		ref  *models.Transaction
	)
	if tx.Type.NeedsCard() && tx.CardIdentifierID != nil {
		c, err := s.cards.GetByID(ctx, *tx.CardIdentifierID)
		if err != nil {
			return models.Transaction{}, fmt.Errorf("load card identifier: %w", err)
		}
		card = &c
	}
	if !tx.Type.NeedsCard() && tx.ReferenceTransactionID != nil {
		r, err := s.txs.GetByID(ctx, *tx.ReferenceTransactionID)
		if err != nil {
			return models.Transaction{}, fmt.Errorf("load reference transaction: %w", err)
		}
		ref = &r
	}

	req := BuildSubmitRequest(tx, card, ref)
	res := s.call(ctx, models.StepSubmit, tx.ID, func(ctx context.Context) (gateway.Response, error) {
		return s.gw.SubmitTransaction(ctx, req)
	})
	next, rec := ApplySubmit(tx, res)
	return s.persist(ctx, next, rec)
}

// ----------------- 3-D Secure -----------------

// Complete3DSecure posts the cardholder's PaRes and then refreshes the outcome,
// whatever the authentication result.
func (s *TransactionService) Complete3DSecure(ctx context.Context, id, pares string) (models.Transaction, error) {
	tx, err := s.txs.GetByID(ctx, id)
	if err != nil {
		return models.Transaction{}, err
	}
	if err := checkTransactionID(tx); err != nil {
		return models.Transaction{}, s.rejected(models.Step3DSecure, tx, err)
	}

	res := s.call(ctx, models.Step3DSecure, tx.ID, func(ctx context.Context) (gateway.Response, error) {
		return s.gw.Submit3DSecure(ctx, *tx.TransactionID, gateway.SecureRequest{PaRes: pares})
	})
	next, rec := Apply3DSecure(tx, pares, res)
	if tx, err = s.persist(ctx, next, rec); err != nil {
		return models.Transaction{}, err
	}
	return s.outcome(ctx, tx)
}

// ----------------- Outcome -----------------

func (s *TransactionService) Outcome(ctx context.Context, id string) (models.Transaction, error) {
	tx, err := s.txs.GetByID(ctx, id)
	if err != nil {
		return models.Transaction{}, err
	}
	return s.outcome(ctx, tx)
}

func (s *TransactionService) outcome(ctx context.Context, tx models.Transaction) (models.Transaction, error) {
	if err := checkTransactionID(tx); err != nil {
		return models.Transaction{}, s.rejected(models.StepOutcome, tx, err)
	}
	res := s.call(ctx, models.StepOutcome, tx.ID, func(ctx context.Context) (gateway.Response, error) {
		return s.gw.TransactionOutcome(ctx, *tx.TransactionID)
	})
	next, rec := ApplyOutcome(tx, res)
	return s.persist(ctx, next, rec)
}

// ----------------- Instructions -----------------

// Release settles a deferred transaction. A nil or non-positive amount
// releases it in full.
func (s *TransactionService) Release(ctx context.Context, id string, amount *int64) (models.Transaction, error) {
	tx, err := s.txs.GetByID(ctx, id)
	if err != nil {
		return models.Transaction{}, err
	}
	if amount == nil || *amount <= 0 {
		full := tx.Amount
		amount = &full
	}
	if err := CheckRelease(tx, s.now(), amount); err != nil {
		return models.Transaction{}, s.rejected(models.StepRelease, tx, err)
	}
	tx, _, err = s.instruct(ctx, tx, models.InstructionRelease, amount)
	return tx, err
}

func (s *TransactionService) Abort(ctx context.Context, id string) (models.Transaction, error) {
	tx, err := s.txs.GetByID(ctx, id)
	if err != nil {
		return models.Transaction{}, err
	}
	if err := CheckAbort(tx, s.now()); err != nil {
		return models.Transaction{}, s.rejected(models.StepAbort, tx, err)
	}
	amount := tx.Amount
	tx, applied, err := s.instruct(ctx, tx, models.InstructionAbort, &amount)
	if err != nil || !applied {
		return tx, err
	}
	return s.outcome(ctx, tx)
}

func (s *TransactionService) Void(ctx context.Context, id string) (models.Transaction, error) {
	tx, err := s.txs.GetByID(ctx, id)
	if err != nil {
		return models.Transaction{}, err
	}
	if err := CheckVoid(tx, s.now()); err != nil {
		return models.Transaction{}, s.rejected(models.StepVoid, tx, err)
	}
	tx, applied, err := s.instruct(ctx, tx, models.InstructionVoid, nil)
	if err != nil || !applied {
		return tx, err
	}
	return s.outcome(ctx, tx)
}

// instruct posts one instruction. Only an accepted instruction changes the
// transaction; other responses are logged and tx is returned unchanged.
func (s *TransactionService) instruct(ctx context.Context, tx models.Transaction, instruction models.Instruction, amount *int64) (models.Transaction, bool, error) {
	req := gateway.InstructionRequest{InstructionType: string(instruction), Amount: amount}
	res := s.call(ctx, string(instruction), tx.ID, func(ctx context.Context) (gateway.Response, error) {
		return s.gw.SubmitInstruction(ctx, *tx.TransactionID, req)
	})

	next, rec, applied := ApplyInstruction(tx, instruction, res, s.now())
	if !applied {
		if _, err := s.responses.Create(ctx, rec); err != nil {
			return models.Transaction{}, false, fmt.Errorf("record %s response: %w", instruction, err)
		}
		s.observe(tx, rec)
		return tx, false, nil
	}
	tx, err := s.persist(ctx, next, rec)
	return tx, err == nil, err
}

// ----------------- Derived transactions -----------------

// Repeat charges the card of a successful transaction again and submits the
// new Repeat transaction immediately.
func (s *TransactionService) Repeat(ctx context.Context, id string, o Overrides) (models.Transaction, error) {
	tx, err := s.txs.GetByID(ctx, id)
	if err != nil {
		return models.Transaction{}, err
	}
	var card models.CardIdentifier
	if tx.CardIdentifierID != nil {
		if card, err = s.cards.GetByID(ctx, *tx.CardIdentifierID); err != nil && !errors.Is(err, repo.ErrNotFound) {
			return models.Transaction{}, fmt.Errorf("load card identifier: %w", err)
		}
	}
	if err := CheckRepeat(tx, card); err != nil {
		return models.Transaction{}, s.rejected("repeat", tx, err)
	}
	return s.derive(ctx, NewRepeat(tx, o))
}

// Refund creates and submits a Refund of tx in the original currency.
func (s *TransactionService) Refund(ctx context.Context, id string, o Overrides) (models.Transaction, error) {
	tx, err := s.txs.GetByID(ctx, id)
	if err != nil {
		return models.Transaction{}, err
	}
	if err := CheckRefund(tx); err != nil {
		return models.Transaction{}, s.rejected("refund", tx, err)
	}
	return s.derive(ctx, NewRefund(tx, o))
}

func (s *TransactionService) derive(ctx context.Context, tx models.Transaction) (models.Transaction, error) {
	created, err := s.Create(ctx, tx)
	if err != nil {
		return models.Transaction{}, err
	}
	return s.submit(ctx, created)
}

// ----------------- Callback tokens -----------------

// Tokens returns the base64 id and callback token that address tx in the
// 3-D Secure return URL.
func (s *TransactionService) Tokens(tx models.Transaction) (tidb64, token string) {
	return base64.RawURLEncoding.EncodeToString([]byte(tx.ID)), s.tokens.Make(tx)
}

// GetForToken resolves a callback URL pair. Every failure looks the same to
// the caller.
func (s *TransactionService) GetForToken(ctx context.Context, tidb64, token string) (models.Transaction, bool) {
	id, err := base64.RawURLEncoding.DecodeString(tidb64)
	if err != nil {
		return models.Transaction{}, false
	}
	tx, err := s.txs.GetByID(ctx, string(id))
	if err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			slog.Error("token lookup", "err", err)
		}
		return models.Transaction{}, false
	}
	if !s.tokens.Check(tx, token) {
		return models.Transaction{}, false
	}
	return tx, true
}

// ----------------- Helpers -----------------

// call runs one gateway exchange. Transport failures are logged and reported
// as an empty response so the step is still recorded.
func (s *TransactionService) call(ctx context.Context, step, txID string, fn func(context.Context) (gateway.Response, error)) gateway.Response {
	res, err := fn(ctx)
	if err != nil {
		slog.Warn("gateway call failed", "step", step, "transaction", txID, "err", err)
		return gateway.Response{}
	}
	slog.Debug("gateway call", "step", step, "transaction", txID, "status_code", res.StatusCode)
	return res
}

func (s *TransactionService) persist(ctx context.Context, tx models.Transaction, rec models.TransactionResponse) (models.Transaction, error) {
	saved, err := s.txs.Apply(ctx, tx, rec)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("save %s: %w", rec.Step, err)
	}
	s.observe(saved, rec)
	return saved, nil
}

func (s *TransactionService) observe(tx models.Transaction, rec models.TransactionResponse) {
	status := 0
	if rec.StatusCode != nil {
		status = *rec.StatusCode
	}
	metrics.TransactionSteps.WithLabelValues(rec.Step, gateway.Classify(status).String()).Inc()
	s.events.Publish(context.Background(), events.NewTransactionEvent(tx, rec))
}

func (s *TransactionService) rejected(operation string, tx models.Transaction, err error) error {
	metrics.InvalidStatusTotal.WithLabelValues(operation).Inc()
	slog.Info("operation rejected", "operation", operation, "transaction", tx.ID, "reason", err.Error())
	return err
}
