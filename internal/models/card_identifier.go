package models

import (
	"fmt"
	"time"
)

// CardIdentifier is the tokenised card returned by the gateway. It is written
// once and never changed afterwards.
type CardIdentifier struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	FirstName         string `json:"first_name"`
	LastName          string `json:"last_name"`
	BillingAddress1   string `json:"billing_address_1"`
	BillingAddress2   string `json:"billing_address_2,omitempty"`
	BillingCity       string `json:"billing_city"`
	BillingCountry    string `json:"billing_country"`
	BillingPostalCode string `json:"billing_postal_code,omitempty"`
	BillingState      string `json:"billing_state,omitempty"`

	Reusable             bool      `json:"reusable"`
	MerchantSessionKey   string    `json:"-"`
	CardIdentifier       string    `json:"-"`
	CardIdentifierExpiry time.Time `json:"card_identifier_expiry"`
	CardType             string    `json:"card_type"`
	LastFourDigits       string    `json:"last_four_digits"`
	ExpiryDate           string    `json:"expiry_date"`
}

// Validate enforces the country specific billing rules.
func (c CardIdentifier) Validate() error {
	errs := FieldErrors{}
	if c.BillingCountry != "IE" && c.BillingPostalCode == "" {
		errs["billing_postal_code"] = "This field is required."
	}
	if c.BillingCountry == "US" && c.BillingState == "" {
		errs["billing_state"] = "This field is required."
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// BillingAddress is the gateway representation; optional parts are omitted when empty.
func (c CardIdentifier) BillingAddress() map[string]string {
	address := map[string]string{
		"address1": c.BillingAddress1,
		"city":     c.BillingCity,
		"country":  c.BillingCountry,
	}
	if c.BillingAddress2 != "" {
		address["address2"] = c.BillingAddress2
	}
	if c.BillingPostalCode != "" {
		address["postalCode"] = c.BillingPostalCode
	}
	if c.BillingState != "" {
		address["state"] = c.BillingState
	}
	return address
}

func (c CardIdentifier) DisplayText() string {
	return fmt.Sprintf("%s (%s)", c.CardType, c.LastFourDigits)
}

// Expired reports whether the identifier can no longer be used for a submission.
func (c CardIdentifier) Expired(now time.Time) bool {
	return !c.CardIdentifierExpiry.IsZero() && now.After(c.CardIdentifierExpiry)
}
