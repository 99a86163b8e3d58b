package validate

import (
	"errors"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/baharkarakas/sagepaypi/internal/cards"
	"github.com/baharkarakas/sagepaypi/internal/models"
)

type ErrField struct {
	Field string `json:"field"`
	Msg   string `json:"msg"`
}

type Errs []ErrField

func (e Errs) Error() string { // error interface
	var b strings.Builder
	for i, ef := range e {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(ef.Field + ": " + ef.Msg)
	}
	return b.String()
}

var v = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("cardnumber", func(fl validator.FieldLevel) bool {
		return cards.ValidNumber(fl.Field().String())
	})
	_ = v.RegisterValidation("cvc", func(fl validator.FieldLevel) bool {
		return cards.ValidSecurityCode(fl.Field().String())
	})
	_ = v.RegisterValidation("mmyy", func(fl validator.FieldLevel) bool {
		return cards.ValidExpiry(fl.Field().String(), time.Now())
	})
	_ = v.RegisterValidation("currency", func(fl validator.FieldLevel) bool {
		return models.ValidCurrency(fl.Field().String())
	})
	return v
}

// Struct runs the `validate` tags of s and reports failures as Errs.
func Struct(s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := make(Errs, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, ErrField{Field: fe.Field(), Msg: message(fe)})
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "min", "gte":
		return "must be >= " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "cardnumber":
		return "invalid card number"
	case "cvc":
		return "invalid security code"
	case "mmyy":
		return "invalid or past expiry date (MMYY)"
	case "currency", "iso3166_1_alpha2":
		return "invalid code"
	}
	return "invalid"
}

// Helpers
func Required(field, value string) *ErrField {
	if strings.TrimSpace(value) == "" {
		return &ErrField{Field: field, Msg: "required"}
	}
	return nil
}

func MinInt(field string, v, min int64) *ErrField {
	if v < min {
		return &ErrField{Field: field, Msg: "must be >= " + strconv.FormatInt(min, 10)}
	}
	return nil
}

// Collect drops the nil results of the helpers above.
func Collect(fields ...*ErrField) error {
	var out Errs
	for _, f := range fields {
		if f != nil {
			out = append(out, *f)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
