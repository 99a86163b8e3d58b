package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/baharkarakas/sagepaypi/internal/models"
	"github.com/baharkarakas/sagepaypi/internal/repository"
)

func TestListNewestFirst(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	base := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	for i, desc := range []string{"old", "new", "middle"} {
		offset := map[string]time.Duration{"old": 0, "middle": time.Hour, "new": 2 * time.Hour}[desc]
		_, err := s.Transactions().Create(ctx, models.Transaction{Description: desc, CreatedAt: base.Add(offset)})
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	got, err := s.Transactions().List(ctx, 2, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Description != "new" || got[1].Description != "middle" {
		t.Errorf("page = %+v", got)
	}
	if rest, _ := s.Transactions().List(ctx, 2, 2); len(rest) != 1 || rest[0].Description != "old" {
		t.Errorf("second page = %+v", rest)
	}
	if none, _ := s.Transactions().List(ctx, 2, 5); len(none) != 0 {
		t.Errorf("past the end = %+v", none)
	}
}

func TestApply(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	created := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	tx, err := s.Transactions().Create(ctx, models.Transaction{CreatedAt: created})
	if err != nil {
		t.Fatal(err)
	}
	if tx.ID == "" || tx.VendorTxCode == "" {
		t.Fatalf("defaults not filled: %+v", tx)
	}

	tx.Status = models.Str("Ok")
	tx.CreatedAt = time.Time{}
	code := 201
	out, err := s.Transactions().Apply(ctx, tx, models.TransactionResponse{TransactionID: tx.ID, Step: models.StepSubmit, StatusCode: &code})
	if err != nil {
		t.Fatal(err)
	}
	if !out.CreatedAt.Equal(created) || out.Status == nil || *out.Status != "Ok" {
		t.Errorf("applied = %+v", out)
	}

	if _, err := s.Responses().Create(ctx, models.TransactionResponse{TransactionID: tx.ID, Step: models.StepOutcome}); err != nil {
		t.Fatal(err)
	}
	log, err := s.Responses().ListByTransaction(ctx, tx.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(log) != 2 || log[0].Step != models.StepOutcome || log[1].Step != models.StepSubmit {
		t.Fatalf("log = %+v", log)
	}
	if string(log[0].Data) != "{}" || log[0].StatusCode != nil {
		t.Errorf("empty response row = %+v", log[0])
	}

	_, err = s.Transactions().Apply(ctx, models.Transaction{ID: "missing"}, models.TransactionResponse{TransactionID: "missing"})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("apply on unknown tx err = %v", err)
	}
}
