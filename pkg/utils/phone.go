package utils

import (
	"errors"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// ErrInvalidPhone is returned for numbers that do not parse or are not dialable
var ErrInvalidPhone = errors.New("invalid phone number")

// NormalizePhone parses phone and returns it in E.164. Numbers without a leading +
// are read as national numbers of defaultRegion (ISO 3166 alpha-2). With an empty
// region only international numbers parse.
func NormalizePhone(phone, defaultRegion string) (string, error) {
	clean := strings.TrimSpace(phone)
	if clean == "" {
		return "", ErrInvalidPhone
	}

	num, err := phonenumbers.Parse(clean, strings.ToUpper(defaultRegion))
	if err != nil {
		return "", ErrInvalidPhone
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", ErrInvalidPhone
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

// IsSupportedPhoneRegion reports whether region is a region code libphonenumber knows
func IsSupportedPhoneRegion(region string) bool {
	return phonenumbers.GetSupportedRegions()[strings.ToUpper(strings.TrimSpace(region))]
}
