package tokens

import (
	"strings"
	"testing"
	"time"

	"github.com/baharkarakas/sagepaypi/internal/models"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTx() models.Transaction {
	return models.Transaction{
		ID:        "ec87ac03-7c34-472c-823b-1950da3568e6",
		UpdatedAt: time.Date(2024, 3, 10, 14, 30, 5, 123456000, time.UTC),
	}
}

func TestMakeAndCheck(t *testing.T) {
	c := &clock{t: time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)}
	g := NewGeneratorWithClock("secret", 1, c.now)
	tx := newTx()

	token := g.Make(tx)
	if !g.Check(tx, token) {
		t.Fatalf("fresh token %q rejected", token)
	}

	parts := strings.Split(token, "-")
	if len(parts) != 2 {
		t.Fatalf("token %q should have two parts", token)
	}
	if len(parts[1]) != 32 {
		t.Errorf("hash part length = %d, want 32", len(parts[1]))
	}
}

func TestCheckIgnoresSubSecondUpdates(t *testing.T) {
	c := &clock{t: time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)}
	g := NewGeneratorWithClock("secret", 1, c.now)
	tx := newTx()
	token := g.Make(tx)

	tx.UpdatedAt = tx.UpdatedAt.Add(100 * time.Millisecond)
	if !g.Check(tx, token) {
		t.Fatal("microsecond differences must not invalidate a token")
	}
}

func TestCheckFailsAfterUpdate(t *testing.T) {
	c := &clock{t: time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)}
	g := NewGeneratorWithClock("secret", 1, c.now)
	tx := newTx()
	token := g.Make(tx)

	tx.UpdatedAt = tx.UpdatedAt.Add(2 * time.Second)
	if g.Check(tx, token) {
		t.Fatal("token should be invalid once the transaction is updated")
	}
}

func TestCheckExpiry(t *testing.T) {
	issued := time.Date(2024, 3, 10, 23, 55, 0, 0, time.UTC)
	c := &clock{t: issued}
	g := NewGeneratorWithClock("secret", 1, c.now)
	tx := newTx()
	token := g.Make(tx)

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"same day", issued.Add(time.Minute), true},
		{"next day", issued.Add(10 * time.Minute), true},
		{"nearly two days later", time.Date(2024, 3, 11, 23, 59, 0, 0, time.UTC), true},
		{"two days later", time.Date(2024, 3, 12, 0, 1, 0, 0, time.UTC), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c.t = tt.at
			if got := g.Check(tx, token); got != tt.want {
				t.Errorf("Check() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCheckRejectsMalformed(t *testing.T) {
	c := &clock{t: time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)}
	g := NewGeneratorWithClock("secret", 1, c.now)
	tx := newTx()
	valid := g.Make(tx)

	for _, token := range []string{
		"",
		"nodash",
		"a-b-c",
		"-" + strings.Split(valid, "-")[1],
		"+1-" + strings.Split(valid, "-")[1],
		"zzzzzzzzzzzzzz-abc",
		strings.Split(valid, "-")[0] + "-0000",
	} {
		if g.Check(tx, token) {
			t.Errorf("Check(%q) = true, want false", token)
		}
	}

	if g.Check(models.Transaction{}, valid) {
		t.Error("token must not validate against a missing transaction")
	}
}

func TestCheckRejectsOtherSecret(t *testing.T) {
	c := &clock{t: time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)}
	tx := newTx()
	token := NewGeneratorWithClock("secret", 1, c.now).Make(tx)

	if NewGeneratorWithClock("other", 1, c.now).Check(tx, token) {
		t.Fatal("token signed with another secret must be rejected")
	}
}
