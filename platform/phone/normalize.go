// Package phone parses the phone numbers clients type into the booking
// and enquiry forms.
package phone

import (
	"errors"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is assumed for numbers written without a country code.
const DefaultRegion = "GB"

var (
	ErrEmpty   = errors.New("phone number is required")
	ErrInvalid = errors.New("phone number is not valid")
)

// Parse returns input in E.164 form.
func Parse(input string) (string, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", ErrEmpty
	}

	number, err := phonenumbers.Parse(trimmed, DefaultRegion)
	if err != nil || !phonenumbers.IsValidNumber(number) {
		return "", ErrInvalid
	}
	return phonenumbers.Format(number, phonenumbers.E164), nil
}

func IsValid(input string) bool {
	_, err := Parse(input)
	return err == nil
}

// NormalizeE164 is Parse for callers that already validated the number;
// anything unparseable comes back trimmed.
func NormalizeE164(input string) string {
	normalized, err := Parse(input)
	if err != nil {
		return strings.TrimSpace(input)
	}
	return normalized
}
