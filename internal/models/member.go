package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"

	MemberEntity = "member"
)

// LeadershipStatus is the member's current rung on the leadership ladder:
// which tier the member was last promoted on and how many times that tier's
// qualification threshold has been met. A member carries at most one label;
// promotion on a higher tier overwrites the lower tier's label.
type LeadershipStatus struct {
	Tier  string `bson:"tier" json:"tier"`
	Level int    `bson:"level" json:"level"`
}

type Member struct {
	ID                    primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UID                   string             `bson:"uid" json:"uid"` // identity from the external auth provider
	DisplayName           string             `bson:"displayName" json:"display_name"`
	Email                 string             `bson:"email" json:"email"`
	Phone                 string             `bson:"phone" json:"phone"`
	UserType              string             `bson:"userType,omitempty" json:"user_type,omitempty"`
	ReferralCode          string             `bson:"referralCode" json:"referral_code"`
	ReferredBy            string             `bson:"referredBy,omitempty" json:"referred_by,omitempty"`
	PaymentStatus         PaymentStatus      `bson:"payment" json:"payment"`
	Leadership            *LeadershipStatus  `bson:"leadership,omitempty" json:"leadership,omitempty"`
	LeadershipLevelReward float64            `bson:"leadershipLevelReward,omitempty" json:"leadership_level_reward,omitempty"`
	ReferralRewarded      bool               `bson:"referralRewarded,omitempty" json:"referral_rewarded,omitempty"`
	EmailVerified         bool               `bson:"emailVerified,omitempty" json:"email_verified,omitempty"`
	OtpVerified           bool               `bson:"isOtpVerified,omitempty" json:"otp_verified,omitempty"`
	CreatedAt             time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt             time.Time          `bson:"updated_at" json:"updated_at"`
}

// HoldsTier reports whether the member's current label sits in the given
// tier's namespace.
func (m *Member) HoldsTier(tier string) bool {
	return m.Leadership != nil && m.Leadership.Tier == tier
}

// TierLevel returns the member's numeric level within the given tier. A
// missing label, or a label from another tier, reads as level 0.
func (m *Member) TierLevel(tier string) int {
	if m.HoldsTier(tier) {
		return m.Leadership.Level
	}
	return 0
}
