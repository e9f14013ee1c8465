package referral

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/rakibalmuqtadir286-byte/bijoy313/internal/models"
)

// WalletCredit is one atomic set of balance increments. Total must move in
// lockstep with the sub-balances; no sub-balance is ever credited alone.
type WalletCredit struct {
	Total          float64
	Referer        float64
	LeadershipFund float64
}

// Store is the data access surface the referral engine runs against. The
// concrete implementation is MongoStore; tests substitute an in-memory fake.
type Store interface {
	// PaidMembers returns every payment-confirmed member.
	PaidMembers(ctx context.Context) ([]models.Member, error)

	// AllMembers returns every member regardless of payment status.
	AllMembers(ctx context.Context) ([]models.Member, error)

	// DirectReferrals returns the paid members whose referredBy equals code.
	// An unknown code yields an empty slice, not an error.
	DirectReferrals(ctx context.Context, code string) ([]models.Member, error)

	// PaidReferredBy returns the paid members whose referredBy is any of the
	// given codes, fetched in one batch.
	PaidReferredBy(ctx context.Context, codes []string) ([]models.Member, error)

	// PromoteMember writes the member's new leadership label and adds reward
	// to the cumulative leadership reward, conditional on the member's stored
	// label still matching what the caller read. Returns false when the
	// condition did not match (a concurrent writer promoted first).
	PromoteMember(ctx context.Context, member models.Member, next models.LeadershipStatus, reward float64) (bool, error)

	// MarkReferralRewarded flips the member's one-time sign-up bonus flag,
	// conditional on it not being set yet. Returns true only for the single
	// caller that performed the flip.
	MarkReferralRewarded(ctx context.Context, id primitive.ObjectID) (bool, error)

	// CreditWallet applies the increments to the owner's wallet, creating the
	// wallet if it does not exist yet.
	CreditWallet(ctx context.Context, ownerUID string, credit WalletCredit) error

	// BackfillWalletFields sets any missing balance field to zero on every
	// wallet document and reports how many documents were touched.
	BackfillWalletFields(ctx context.Context) (int64, error)
}
