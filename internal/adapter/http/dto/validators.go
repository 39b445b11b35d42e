package dto

import (
	"html"
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var safeStringRe = regexp.MustCompile(`^[a-zA-Z0-9_\-\.]+$`)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("safe_id", validateSafeID)
	}
}

// validateSafeID allows alphanumeric, underscore, dash, and dot.
func validateSafeID(fl validator.FieldLevel) bool {
	return safeStringRe.MatchString(fl.Field().String())
}

// centsPerUnit is the scale between API decimals and ledger minor units.
var centsPerUnit = decimal.NewFromInt(100)

// AmountMinor converts an API decimal amount to int64 minor units.
// Amounts with more than two decimal places are rejected rather than
// rounded, and values whose minor-unit form does not fit in int64 are
// rejected rather than truncated.
func AmountMinor(amount decimal.Decimal) (int64, bool) {
	minor := amount.Shift(2)
	if !minor.IsInteger() {
		return 0, false
	}
	units := minor.BigInt()
	if !units.IsInt64() {
		return 0, false
	}
	return units.Int64(), true
}

// MinorToDecimal converts ledger minor units back to an API decimal.
func MinorToDecimal(minor int64) decimal.Decimal {
	return decimal.NewFromInt(minor).Div(centsPerUnit)
}

// SanitizeStruct trims whitespace and HTML-escapes every exported string
// field (including *string) of a struct pointer.
func SanitizeStruct(v interface{}) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return
	}
	sanitizeFields(rv.Elem())
}

func sanitizeFields(rv reflect.Value) {
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if !f.CanSet() {
			continue
		}
		switch f.Kind() {
		case reflect.String:
			f.SetString(sanitize(f.String()))
		case reflect.Ptr:
			if f.IsNil() {
				continue
			}
			elem := f.Elem()
			if elem.Kind() == reflect.String {
				s := sanitize(elem.String())
				elem.SetString(s)
			}
		}
	}
}

func sanitize(s string) string {
	return html.EscapeString(strings.TrimSpace(s))
}
