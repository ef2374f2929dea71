package accounts

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

const DefaultPhoneRegion = "NG"

// PhoneNormalizer formats phone numbers as E.164 so the same number
// written two ways maps to one stored value.
type PhoneNormalizer struct {
	region string
}

func NewPhoneNormalizer(region string) *PhoneNormalizer {
	region = strings.ToUpper(strings.TrimSpace(region))
	if region == "" {
		region = DefaultPhoneRegion
	}
	return &PhoneNormalizer{region: region}
}

// Normalize returns the E.164 form of raw, or the trimmed input when it
// cannot be parsed as a phone number.
func (p *PhoneNormalizer) Normalize(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	region := DefaultPhoneRegion
	if p != nil {
		region = p.region
	}
	num, err := phonenumbers.Parse(raw, region)
	if err != nil || !phonenumbers.IsPossibleNumber(num) {
		return raw
	}
	return phonenumbers.Format(num, phonenumbers.E164)
}
