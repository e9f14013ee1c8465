package utils

import (
	"strings"

	"github.com/google/uuid"
)

// NewReferralCode returns a short, uppercase, unique-enough referral code.
// Uniqueness is still enforced against the members collection at insert.
func NewReferralCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
