package validate

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

type cardForm struct {
	Number   string `json:"card_number" validate:"required,cardnumber"`
	Code     string `json:"card_security_code" validate:"required,cvc"`
	Expiry   string `json:"card_expiry_date" validate:"required,mmyy"`
	Currency string `json:"currency" validate:"required,currency"`
}

func nextYear() string {
	return fmt.Sprintf("12%02d", (time.Now().Year()+1)%100)
}

func TestStructValid(t *testing.T) {
	f := cardForm{Number: "4929000000006", Code: "123", Expiry: nextYear(), Currency: "GBP"}
	if err := Struct(f); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStructReportsJSONFieldNames(t *testing.T) {
	f := cardForm{Number: "1111", Code: "12", Expiry: "0100", Currency: "XXQ"}
	err := Struct(f)

	var errs Errs
	if !errors.As(err, &errs) {
		t.Fatalf("want Errs, got %T %v", err, err)
	}
	got := map[string]bool{}
	for _, e := range errs {
		got[e.Field] = true
	}
	for _, field := range []string{"card_number", "card_security_code", "card_expiry_date", "currency"} {
		if !got[field] {
			t.Errorf("missing error for %s in %v", field, errs)
		}
	}
}

func TestCollect(t *testing.T) {
	if err := Collect(Required("a", "x"), MinInt("b", 5, 1)); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	err := Collect(Required("a", " "), MinInt("b", 0, 1))
	var errs Errs
	if !errors.As(err, &errs) || len(errs) != 2 {
		t.Fatalf("want two errors, got %v", err)
	}
}
