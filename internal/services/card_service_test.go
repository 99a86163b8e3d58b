package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/baharkarakas/sagepaypi/internal/gateway"
	"github.com/baharkarakas/sagepaypi/internal/models"
	"github.com/baharkarakas/sagepaypi/internal/repository/memory"
)

type fakeCardGateway struct {
	fn    func(card gateway.CardDetails) (gateway.Response, gateway.SessionKey, error)
	calls int
}

func (f *fakeCardGateway) CreateCardIdentifier(_ context.Context, card gateway.CardDetails) (gateway.Response, gateway.SessionKey, error) {
	f.calls++
	return f.fn(card)
}

func validInput() CardInput {
	return CardInput{
		FirstName: "Sam", LastName: "Jones",
		BillingAddress1: "88 The Road", BillingCity: "London", BillingCountry: "GB", BillingPostalCode: "412",
		CardHolderName: "SAM JONES", CardNumber: "4929 0000 0000 6", CardExpiryDate: "1226", CardSecurityCode: "123",
		Reusable: true,
	}
}

func newCardService(gw CardGateway) (*CardService, *memory.Store) {
	store := memory.NewStore()
	return NewCardService(gw, store.Cards()).WithClock(func() time.Time { return now }), store
}

func created(card gateway.CardDetails) (gateway.Response, gateway.SessionKey, error) {
	return resp(http.StatusCreated, map[string]any{
		"cardIdentifier": "CI-1", "expiry": "2024-03-10T12:10:00.000Z", "cardType": "Visa",
	}), gateway.SessionKey{Key: "MSK"}, nil
}

func TestCardCreate(t *testing.T) {
	var sent gateway.CardDetails
	gw := &fakeCardGateway{fn: func(card gateway.CardDetails) (gateway.Response, gateway.SessionKey, error) {
		sent = card
		return created(card)
	}}
	svc, store := newCardService(gw)

	c, err := svc.Create(context.Background(), validInput())
	if err != nil {
		t.Fatal(err)
	}
	if sent.CardNumber != "4929000000006" || sent.ExpiryDate != "1226" || sent.CardholderName != "SAM JONES" {
		t.Errorf("sent = %+v", sent)
	}
	if c.CardIdentifier != "CI-1" || c.MerchantSessionKey != "MSK" || c.CardType != "Visa" {
		t.Errorf("card = %+v", c)
	}
	if c.LastFourDigits != "0006" || c.ExpiryDate != "1226" || !c.Reusable {
		t.Errorf("card = %+v", c)
	}
	if c.CardIdentifierExpiry.IsZero() || c.DisplayText() != "Visa (0006)" {
		t.Errorf("card = %+v", c)
	}
	if _, err := store.Cards().GetByID(context.Background(), c.ID); err != nil {
		t.Errorf("card not stored: %v", err)
	}
}

func TestCardCreateLocalValidation(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*CardInput)
		field string
		msg   string
	}{
		{"postal code outside IE", func(in *CardInput) { in.BillingPostalCode = "" }, "billing_postal_code", "This field is required."},
		{"state in US", func(in *CardInput) { in.BillingCountry = "US" }, "billing_state", "This field is required."},
		{"card number", func(in *CardInput) { in.CardNumber = "1234 5678" }, "card_number", "The credit card number you entered is invalid."},
		{"missing card number", func(in *CardInput) { in.CardNumber = "" }, "card_number", "Please enter a credit card number."},
		{"security code", func(in *CardInput) { in.CardSecurityCode = "12" }, "card_security_code", "The security code you entered is invalid."},
		{"expired", func(in *CardInput) { in.CardExpiryDate = "0224" }, "card_expiry_date", "This expiry date has passed."},
		{"bad month", func(in *CardInput) { in.CardExpiryDate = "1326" }, "card_expiry_date", "Please enter a valid month."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &fakeCardGateway{fn: created}
			svc, _ := newCardService(gw)
			in := validInput()
			tt.edit(&in)

			_, err := svc.Create(context.Background(), in)
			var fe models.FieldErrors
			if !errors.As(err, &fe) {
				t.Fatalf("err = %v, want FieldErrors", err)
			}
			if fe[tt.field] != tt.msg {
				t.Errorf("%s = %q, want %q (all: %v)", tt.field, fe[tt.field], tt.msg, fe)
			}
			if gw.calls != 0 {
				t.Error("gateway must not be called when local checks fail")
			}
		})
	}
}

func TestCardCreateIrelandNeedsNoPostalCode(t *testing.T) {
	svc, _ := newCardService(&fakeCardGateway{fn: created})
	in := validInput()
	in.BillingCountry = "IE"
	in.BillingPostalCode = ""
	if _, err := svc.Create(context.Background(), in); err != nil {
		t.Fatal(err)
	}
}

func TestCardCreateGatewayFailures(t *testing.T) {
	tests := []struct {
		name string
		fn   func(gateway.CardDetails) (gateway.Response, gateway.SessionKey, error)
		want models.FieldErrors
	}{
		{
			name: "no session key",
			fn: func(gateway.CardDetails) (gateway.Response, gateway.SessionKey, error) {
				return gateway.Response{}, gateway.SessionKey{}, fmt.Errorf("%w: status 401", gateway.ErrNoSessionKey)
			},
			want: models.FieldErrors{NonFieldErrors: "Cannot connect to Sagepay, please try again later."},
		},
		{
			name: "field errors",
			fn: func(gateway.CardDetails) (gateway.Response, gateway.SessionKey, error) {
				return resp(http.StatusUnprocessableEntity, map[string]any{"errors": []any{
					map[string]any{"property": "cardDetails.cardNumber", "clientMessage": "Invalid card number", "code": 1002},
					map[string]any{"property": "cardDetails.expiryDate", "clientMessage": "Expired", "code": 1003},
					map[string]any{"property": "vendorName", "clientMessage": "Vendor unknown", "code": 1004},
				}}), gateway.SessionKey{Key: "MSK"}, nil
			},
			want: models.FieldErrors{
				"card_number":      "Invalid card number",
				"card_expiry_date": "Expired",
				NonFieldErrors:     "Vendor unknown",
			},
		},
		{
			name: "unexpected status",
			fn: func(gateway.CardDetails) (gateway.Response, gateway.SessionKey, error) {
				return resp(http.StatusInternalServerError, map[string]any{}), gateway.SessionKey{Key: "MSK"}, nil
			},
			want: models.FieldErrors{NonFieldErrors: "Something went wrong at sagepay, Please check the card details and try again."},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newCardService(&fakeCardGateway{fn: tt.fn})
			_, err := svc.Create(context.Background(), validInput())
			var fe models.FieldErrors
			if !errors.As(err, &fe) {
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
