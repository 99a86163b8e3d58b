package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/baharkarakas/sagepaypi/internal/cards"
	"github.com/baharkarakas/sagepaypi/internal/gateway"
	"github.com/baharkarakas/sagepaypi/internal/models"
	repo "github.com/baharkarakas/sagepaypi/internal/repository"
)

// NonFieldErrors is the FieldErrors key for errors not tied to one input.
const NonFieldErrors = "__all__"

// CardGateway registers card details with the gateway.
type CardGateway interface {
	CreateCardIdentifier(ctx context.Context, card gateway.CardDetails) (gateway.Response, gateway.SessionKey, error)
}

// CardInput is what a cardholder types in. Raw card details are sent to the
// gateway and never stored.
type CardInput struct {
	FirstName         string `json:"first_name" validate:"required,max=20"`
	LastName          string `json:"last_name" validate:"required,max=20"`
	BillingAddress1   string `json:"billing_address_1" validate:"required,max=50"`
	BillingAddress2   string `json:"billing_address_2" validate:"max=50"`
	BillingCity       string `json:"billing_city" validate:"required,max=40"`
	BillingCountry    string `json:"billing_country" validate:"required,iso3166_1_alpha2"`
	BillingPostalCode string `json:"billing_postal_code" validate:"max=10"`
	BillingState      string `json:"billing_state" validate:"max=2"`

	CardHolderName   string `json:"card_holder_name" validate:"required,max=45"`
	CardNumber       string `json:"card_number" validate:"required,cardnumber"`
	CardExpiryDate   string `json:"card_expiry_date" validate:"required,mmyy"`
	CardSecurityCode string `json:"card_security_code" validate:"required,cvc"`
	Reusable         bool   `json:"reusable"`
}

// gateway property -> input field
var cardErrorFields = map[string]string{
	"cardDetails.cardholderName": "card_holder_name",
	"cardDetails.cardNumber":     "card_number",
	"cardDetails.expiryDate":     "card_expiry_date",
	"cardDetails.securityCode":   "card_security_code",
}

type CardService struct {
	gw    CardGateway
	cards repo.CardIdentifiers
	now   func() time.Time
}

func NewCardService(gw CardGateway, c repo.CardIdentifiers) *CardService {
	return &CardService{gw: gw, cards: c, now: time.Now}
}

func (s *CardService) WithClock(now func() time.Time) *CardService {
	s.now = now
	return s
}

func (in CardInput) card() models.CardIdentifier {
	return models.CardIdentifier{
		FirstName:         strings.TrimSpace(in.FirstName),
		LastName:          strings.TrimSpace(in.LastName),
		BillingAddress1:   strings.TrimSpace(in.BillingAddress1),
		BillingAddress2:   strings.TrimSpace(in.BillingAddress2),
		BillingCity:       strings.TrimSpace(in.BillingCity),
		BillingCountry:    strings.ToUpper(strings.TrimSpace(in.BillingCountry)),
		BillingPostalCode: strings.TrimSpace(in.BillingPostalCode),
		BillingState:      strings.ToUpper(strings.TrimSpace(in.BillingState)),
		Reusable:          in.Reusable,
	}
}

// check runs the local card rules; the gateway is only asked once they pass.
func (s *CardService) check(in CardInput, c models.CardIdentifier) models.FieldErrors {
	errs := models.FieldErrors{}
	if err := c.Validate(); err != nil {
		var fe models.FieldErrors
		if errors.As(err, &fe) {
			for k, v := range fe {
				errs[k] = v
			}
		}
	}

	if strings.TrimSpace(in.CardHolderName) == "" {
		errs["card_holder_name"] = "This field is required."
	}
	switch number := cards.Normalize(in.CardNumber); {
	case number == "":
		errs["card_number"] = "Please enter a credit card number."
	case !cards.ValidNumber(number):
		errs["card_number"] = "The credit card number you entered is invalid."
	}
	switch code := strings.ReplaceAll(in.CardSecurityCode, " ", ""); {
	case code == "":
		errs["card_security_code"] = "Please enter the three or four digit security code."
	case !cards.ValidSecurityCode(code):
		errs["card_security_code"] = "The security code you entered is invalid."
	}
	if _, ok := cards.ParseExpiry(in.CardExpiryDate); !ok {
		errs["card_expiry_date"] = "Please enter a valid month."
	} else if !cards.ValidExpiry(in.CardExpiryDate, s.now()) {
		errs["card_expiry_date"] = "This expiry date has passed."
	}
	return errs
}

// Create registers the card with the gateway and stores the resulting
// identifier. Gateway rejections come back as models.FieldErrors keyed by
// input field, or by NonFieldErrors.
func (s *CardService) Create(ctx context.Context, in CardInput) (models.CardIdentifier, error) {
	c := in.card()
	if errs := s.check(in, c); len(errs) > 0 {
		return models.CardIdentifier{}, errs
	}

	number := cards.Normalize(in.CardNumber)
	res, sk, err := s.gw.CreateCardIdentifier(ctx, gateway.CardDetails{
		CardholderName: strings.TrimSpace(in.CardHolderName),
		CardNumber:     number,
		ExpiryDate:     in.CardExpiryDate,
		SecurityCode:   strings.ReplaceAll(in.CardSecurityCode, " ", ""),
	})
	if err != nil {
		slog.Warn("card identifier request failed", "err", err)
		return models.CardIdentifier{}, models.FieldErrors{NonFieldErrors: MsgCardConnect}
	}

	switch res.StatusCode {
	case http.StatusCreated:
	case http.StatusUnprocessableEntity:
		return models.CardIdentifier{}, cardErrors(res)
	default:
		slog.Warn("card identifier rejected", "status_code", res.StatusCode)
		return models.CardIdentifier{}, models.FieldErrors{NonFieldErrors: MsgCardUnexpected}
	}

	id := res.String("cardIdentifier")
	if id == nil {
		return models.CardIdentifier{}, models.FieldErrors{NonFieldErrors: MsgCardUnexpected}
	}
	c.MerchantSessionKey = sk.Key
	c.CardIdentifier = *id
	if exp, ok := res.Time("expiry"); ok {
		c.CardIdentifierExpiry = exp
	}
	if t := res.String("cardType"); t != nil {
		c.CardType = *t
	}
	c.LastFourDigits = cards.LastFour(number)
	c.ExpiryDate = in.CardExpiryDate

	saved, err := s.cards.Create(ctx, c)
	if err != nil {
		return models.CardIdentifier{}, fmt.Errorf("save card identifier: %w", err)
	}
	slog.Info("card identifier created", "card", saved.ID, "card_type", saved.CardType, "reusable", saved.Reusable)
	return saved, nil
}

func (s *CardService) Get(ctx context.Context, id string) (models.CardIdentifier, error) {
	return s.cards.GetByID(ctx, id)
}

// cardErrors maps a 422 errors list onto input fields. The first message for
// a field wins.
func cardErrors(res gateway.Response) models.FieldErrors {
	errs := models.FieldErrors{}
	add := func(key, msg string) {
		if _, ok := errs[key]; !ok {
			errs[key] = msg
		}
	}
	for _, e := range res.Errors() {
		if e.ClientMessage == "" {
			continue
		}
		if field, ok := cardErrorFields[e.Property]; ok {
			add(field, e.ClientMessage)
			continue
		}
		add(NonFieldErrors, e.ClientMessage)
	}
	if len(errs) == 0 {
		errs[NonFieldErrors] = MsgCardUnexpected
	}
	return errs
}
