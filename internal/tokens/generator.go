// Package tokens issues the short-lived, tamper-evident tokens that let an
// unauthenticated 3-D Secure callback address a single transaction.
package tokens

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"io"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/hkdf"

	"github.com/baharkarakas/sagepaypi/internal/models"
)

const keySalt = "sagepaypi.tokens.TransactionTokenGenerator"

// epoch is the day tokens count from; base36 keeps the day count at three
// characters for about a century.
var epoch = time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC)

// Generator makes and checks tokens. A token is "<base36 days>-<hmac>" where
// the hmac covers the transaction id, its last update (whole seconds) and the
// day count, so any update to the transaction invalidates outstanding tokens.
type Generator struct {
	key       []byte
	daysValid int
	now       func() time.Time
}

func NewGenerator(secret string, daysValid int) *Generator {
	return NewGeneratorWithClock(secret, daysValid, time.Now)
}

// NewGeneratorWithClock is NewGenerator with a replaceable clock.
func NewGeneratorWithClock(secret string, daysValid int, now func() time.Time) *Generator {
	key := make([]byte, sha256.Size)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), []byte(keySalt), nil), key); err != nil {
		panic("tokens: derive key: " + err.Error())
	}
	return &Generator{key: key, daysValid: daysValid, now: now}
}

func (g *Generator) Make(tx models.Transaction) string {
	return g.makeWithTimestamp(tx, g.numDays(g.now()))
}

// Check reports whether token was issued for tx in its current state and is
// still inside the validity window. Days are counted at midnight UTC, so a
// one day window accepts tokens for up to two calendar days.
func (g *Generator) Check(tx models.Transaction, token string) bool {
	if tx.ID == "" || token == "" {
		return false
	}

	parts := strings.Split(token, "-")
	if len(parts) != 2 {
		return false
	}
	ts, ok := parseBase36(parts[0])
	if !ok {
		return false
	}

	if subtle.ConstantTimeCompare([]byte(g.makeWithTimestamp(tx, ts)), []byte(token)) != 1 {
		return false
	}

	return g.numDays(g.now())-ts <= int64(g.daysValid)
}

func (g *Generator) makeWithTimestamp(tx models.Transaction, ts int64) string {
	mac := hmac.New(sha256.New, g.key)
	mac.Write([]byte(hashValue(tx, ts)))
	sum := hex.EncodeToString(mac.Sum(nil))

	// every other character keeps the URL short
	var b strings.Builder
	for i := 0; i < len(sum); i += 2 {
		b.WriteByte(sum[i])
	}
	return strconv.FormatInt(ts, 36) + "-" + b.String()
}

func hashValue(tx models.Transaction, ts int64) string {
	updated := tx.UpdatedAt.UTC().Truncate(time.Second).Format("2006-01-02 15:04:05")
	return tx.ID + updated + strconv.FormatInt(ts, 10)
}

func (g *Generator) numDays(t time.Time) int64 {
	u := t.UTC()
	today := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	return int64(today.Sub(epoch) / (24 * time.Hour))
}

func parseBase36(s string) (int64, bool) {
	if s == "" || len(s) > 13 {
		return 0, false
	}
	for _, r := range s {
		if !(r >= '0' && r <= '9' || r >= 'a' && r <= 'z') {
			return 0, false
		}
	}
	n, err := strconv.ParseInt(s, 36, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
