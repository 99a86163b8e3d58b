// Package memory keeps everything in process. It backs STORAGE=memory for
// local runs and the service tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/baharkarakas/sagepaypi/internal/models"
	"github.com/baharkarakas/sagepaypi/internal/repository"
	"github.com/google/uuid"
)

type Store struct {
	mu        sync.RWMutex
	now       func() time.Time
	cards     map[string]models.CardIdentifier
	txs       map[string]models.Transaction
	responses map[string][]models.TransactionResponse
}

func NewStore() *Store {
	return &Store{
		now:       time.Now,
		cards:     map[string]models.CardIdentifier{},
		txs:       map[string]models.Transaction{},
		responses: map[string][]models.TransactionResponse{},
	}
}

// Cards, Transactions and Responses expose the store through the repository interfaces.
func (s *Store) Cards() repository.CardIdentifiers { return cardsRepo{s} }
func (s *Store) Transactions() repository.Transactions { return txRepo{s} }
func (s *Store) Responses() repository.Responses { return respRepo{s} }

type cardsRepo struct{ s *Store }

func (r cardsRepo) Create(_ context.Context, c models.CardIdentifier) (models.CardIdentifier, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = r.s.now()
	}
	r.s.cards[c.ID] = c
	return c, nil
}

func (r cardsRepo) GetByID(_ context.Context, id string) (models.CardIdentifier, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.cards[id]
	if !ok {
		return models.CardIdentifier{}, repository.ErrNotFound
	}
	return c, nil
}

type txRepo struct{ s *Store }

// Create stores tx as given, filling id, vendor code and timestamps when empty.
func (r txRepo) Create(_ context.Context, tx models.Transaction) (models.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	if tx.VendorTxCode == "" {
		tx.VendorTxCode = uuid.NewString()
	}
	now := r.s.now()
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = now
	}
	if tx.UpdatedAt.IsZero() {
		tx.UpdatedAt = now
	}
	r.s.txs[tx.ID] = tx
	return tx, nil
}

func (r txRepo) GetByID(_ context.Context, id string) (models.Transaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	tx, ok := r.s.txs[id]
	if !ok {
		return models.Transaction{}, repository.ErrNotFound
	}
	return tx, nil
}

func (r txRepo) List(_ context.Context, limit, offset int) ([]models.Transaction, error) {
	r.s.mu.RLock()
	out := make([]models.Transaction, 0, len(r.s.txs))
	for _, tx := range r.s.txs {
		out = append(out, tx)
	}
	r.s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r txRepo) Apply(_ context.Context, tx models.Transaction, resp models.TransactionResponse) (models.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.txs[tx.ID]
	if !ok {
		return models.Transaction{}, repository.ErrNotFound
	}
	r.s.appendResponse(resp)

	tx.CreatedAt = stored.CreatedAt
	tx.UpdatedAt = r.s.now()
	r.s.txs[tx.ID] = tx
	return tx, nil
}

type respRepo struct{ s *Store }

func (r respRepo) Create(_ context.Context, resp models.TransactionResponse) (models.TransactionResponse, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.appendResponse(resp), nil
}

func (r respRepo) ListByTransaction(_ context.Context, transactionID string) ([]models.TransactionResponse, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	log := r.s.responses[transactionID]
	out := make([]models.TransactionResponse, len(log))
	for i := range log {
		out[len(log)-1-i] = log[i]
	}
	return out, nil
}

// appendResponse must be called with mu held.
func (s *Store) appendResponse(resp models.TransactionResponse) models.TransactionResponse {
	if resp.ID == "" {
		resp.ID = uuid.NewString()
	}
	if resp.CreatedAt.IsZero() {
		resp.CreatedAt = s.now()
	}
	if len(resp.Data) == 0 {
		resp.Data = []byte("{}")
	}
	s.responses[resp.TransactionID] = append(s.responses[resp.TransactionID], resp)
	return resp
}
