package models

import (
	"testing"
	"testing/quick"
	"time"
)

func TestTransactionValidate(t *testing.T) {
	ref := "tx-0"
	tests := []struct {
		name string
		tx   Transaction
		want FieldErrors
	}{
		{"payment", Transaction{Type: TxnPayment, Currency: "GBP", CardIdentifierID: Str("c")}, nil},
		{"payment without card", Transaction{Type: TxnPayment, Currency: "GBP"}, FieldErrors{"card_identifier": "This field is required."}},
		{"repeat without reference", Transaction{Type: TxnRepeat, Currency: "GBP"}, FieldErrors{"reference_transaction": `Required for a "Repeat" transaction.`}},
		{"refund without reference", Transaction{Type: TxnRefund, Currency: "GBP"}, FieldErrors{"reference_transaction": `Required for a "Refund" transaction.`}},
		{"refund", Transaction{Type: TxnRefund, Currency: "EUR", ReferenceTransactionID: &ref}, nil},
		{"bad currency", Transaction{Type: TxnRefund, Currency: "XYZ", ReferenceTransactionID: &ref}, FieldErrors{"currency": "Requires a valid currency."}},
		{"lowercase currency", Transaction{Type: TxnRefund, Currency: "gbp", ReferenceTransactionID: &ref}, FieldErrors{"currency": "Requires a valid currency."}},
		{"bad type", Transaction{Type: "Authorise", Currency: "GBP"}, FieldErrors{"type": "Select a valid choice."}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tx.Validate()
			if tt.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			fe, ok := err.(FieldErrors)
			if !ok {
				t.Fatalf("err = %v, want FieldErrors", err)
			}
			if len(fe) != len(tt.want) {
				t.Fatalf("errors = %v, want %v", fe, tt.want)
			}
			for k, v := range tt.want {
				if fe[k] != v {
					t.Errorf("%s = %q, want %q", k, fe[k], v)
				}
			}
		})
	}
}

func TestDaysSinceCreated(t *testing.T) {
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		now  time.Time
		want int
	}{
		{created, 0},
		{created.Add(23 * time.Hour), 0},
		{created.Add(24 * time.Hour), 1},
		{created.AddDate(0, 0, 30).Add(time.Hour), 30},
		{created.AddDate(0, 0, 31), 31},
		{created.Add(-time.Hour), -1},
	}
	for _, tt := range tests {
		tx := Transaction{CreatedAt: created}
		if got := tx.DaysSinceCreated(tt.now); got != tt.want {
			t.Errorf("DaysSinceCreated(%s) = %d, want %d", tt.now, got, tt.want)
		}
	}
}

func TestCardIdentifierValidate(t *testing.T) {
	tests := []struct {
		name string
		card CardIdentifier
		want []string
	}{
		{"ireland needs no postal code", CardIdentifier{BillingCountry: "IE"}, nil},
		{"postal code required", CardIdentifier{BillingCountry: "GB"}, []string{"billing_postal_code"}},
		{"us needs state", CardIdentifier{BillingCountry: "US", BillingPostalCode: "10001"}, []string{"billing_state"}},
		{"us complete", CardIdentifier{BillingCountry: "US", BillingPostalCode: "10001", BillingState: "NY"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.card.Validate()
			if tt.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			fe, _ := err.(FieldErrors)
			for _, k := range tt.want {
				if fe[k] != "This field is required." {
					t.Errorf("%s = %q", k, fe[k])
				}
			}
		})
	}
}

func TestBillingAddress(t *testing.T) {
	c := CardIdentifier{BillingAddress1: "88 The Road", BillingCity: "London", BillingCountry: "GB", BillingPostalCode: "412"}
	got := c.BillingAddress()
	if len(got) != 4 || got["postalCode"] != "412" || got["address1"] != "88 The Road" {
		t.Errorf("address = %v", got)
	}
	if _, ok := got["state"]; ok {
		t.Error("empty state must be omitted")
	}
	if _, ok := got["address2"]; ok {
		t.Error("empty address2 must be omitted")
	}

	c.CardType, c.LastFourDigits = "Visa", "0006"
	if c.DisplayText() != "Visa (0006)" {
		t.Errorf("display = %q", c.DisplayText())
	}
}

func TestCardIdentifierExpired(t *testing.T) {
	exp := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	c := CardIdentifier{CardIdentifierExpiry: exp}
	if c.Expired(exp.Add(-time.Minute)) || !c.Expired(exp.Add(time.Minute)) {
		t.Error("expiry boundary wrong")
	}
	if (CardIdentifier{}).Expired(exp) {
		t.Error("unknown expiry must not count as expired")
	}
}

func TestMoney(t *testing.T) {
	tests := []struct {
		amount int64
		code   string
		want   string
	}{
		{1000, "GBP", "10.00 GBP"},
		{1, "EUR", "0.01 EUR"},
		{500, "JPY", "500 JPY"},
	}
	for _, tt := range tests {
		if got := FormatAmount(tt.amount, tt.code); got != tt.want {
			t.Errorf("FormatAmount(%d, %s) = %q, want %q", tt.amount, tt.code, got, tt.want)
		}
	}
	if ValidCurrency("GB") || ValidCurrency("") || !ValidCurrency("USD") {
		t.Error("ValidCurrency")
	}
}

func TestFieldErrorsMessage(t *testing.T) {
	err := FieldErrors{"b": "second", "a": "first"}
	if got := err.Error(); got != "a: first; b: second" {
		t.Errorf("Error() = %q", got)
	}
}

func TestStatusPredicates(t *testing.T) {
	check := func(code *string) bool {
		tx := Transaction{StatusCode: code}
		isOK := code != nil && *code == "0000"
		is3DS := code != nil && *code == "2007"
		return tx.Successful() == isOK && tx.Requires3DSecure() == is3DS
	}

	for _, code := range []*string{nil, Str(""), Str("0000"), Str("2007"), Str("0001"), Str(" 0000"), Str("0000 "), Str("2007\n"), Str("00000")} {
		if !check(code) {
			t.Errorf("predicates wrong for %v", code)
		}
	}
	if err := quick.Check(func(code string) bool { return check(&code) }, nil); err != nil {
		t.Error(err)
	}
}
