package utils

import (
	"errors"
	"strings"

	"github.com/ttacon/libphonenumber"
)

// DefaultPhoneRegion is used for numbers written without a country code.
const DefaultPhoneRegion = "ID"

var ErrInvalidPhone = errors.New("invalid phone number")

// NormalizePhone parses a phone number in the given region and returns it in E.164 form.
// "0812-3456-7890" and "+62 812 3456 7890" normalise to the same value.
func NormalizePhone(raw, region string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalidPhone
	}
	if region == "" {
		region = DefaultPhoneRegion
	}
	num, err := libphonenumber.Parse(raw, strings.ToUpper(region))
	if err != nil {
		return "", ErrInvalidPhone
	}
	if !libphonenumber.IsPossibleNumber(num) {
		return "", ErrInvalidPhone
	}
	return libphonenumber.Format(num, libphonenumber.E164), nil
}
