package referral

import (
	"context"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/rakibalmuqtadir286-byte/bijoy313/internal/models"
)

// fakeStore is an in-memory Store for engine tests. Its conditional writes
// behave like the real collection: PromoteMember matches the stored label
// against the label the caller read, MarkReferralRewarded flips at most once.
type fakeStore struct {
	mu      sync.Mutex
	members []*models.Member
	wallets map[string]*models.Wallet

	denyPromotions bool // simulate a concurrent writer winning every race
	creditErr      error
	creditCalls    int

	missingFields int64 // wallet fields awaiting backfill
	backfillErr   error
}

func newFakeStore(members ...*models.Member) *fakeStore {
	return &fakeStore{members: members, wallets: map[string]*models.Wallet{}}
}

func (f *fakeStore) add(m *models.Member) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.members = append(f.members, m)
}

func (f *fakeStore) wallet(uid string) models.Wallet {
	f.mu.Lock()
	defer f.mu.Unlock()
	if w, ok := f.wallets[uid]; ok {
		return *w
	}
	return models.Wallet{}
}

func (f *fakeStore) PaidMembers(ctx context.Context) ([]models.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Member
	for _, m := range f.members {
		if m.PaymentStatus == models.PaymentPaid {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeStore) AllMembers(ctx context.Context) ([]models.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Member, 0, len(f.members))
	for _, m := range f.members {
		out = append(out, *m)
	}
	return out, nil
}

func (f *fakeStore) DirectReferrals(ctx context.Context, code string) ([]models.Member, error) {
	return f.PaidReferredBy(ctx, []string{code})
}

func (f *fakeStore) PaidReferredBy(ctx context.Context, codes []string) ([]models.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	set := make(map[string]bool, len(codes))
	for _, c := range codes {
		set[c] = true
	}
	var out []models.Member
	for _, m := range f.members {
		if m.PaymentStatus == models.PaymentPaid && m.ReferredBy != "" && set[m.ReferredBy] {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeStore) PromoteMember(ctx context.Context, member models.Member, next models.LeadershipStatus, reward float64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.denyPromotions {
		return false, nil
	}
	for _, m := range f.members {
		if m.ID != member.ID {
			continue
		}
		if !sameLabel(m.Leadership, member.Leadership) {
			return false, nil
		}
		label := next
		m.Leadership = &label
		m.LeadershipLevelReward += reward
		return true, nil
	}
	return false, nil
}

func sameLabel(a, b *models.LeadershipStatus) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (f *fakeStore) MarkReferralRewarded(ctx context.Context, id primitive.ObjectID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.members {
		if m.ID == id {
			if m.ReferralRewarded {
				return false, nil
			}
			m.ReferralRewarded = true
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) CreditWallet(ctx context.Context, ownerUID string, credit WalletCredit) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creditCalls++
	if f.creditErr != nil {
		return f.creditErr
	}
	w, ok := f.wallets[ownerUID]
	if !ok {
		w = &models.Wallet{OwnerUID: ownerUID}
		f.wallets[ownerUID] = w
	}
	w.TotalBalance += credit.Total
	w.RefererBalance += credit.Referer
	w.LeadershipFund += credit.LeadershipFund
	return nil
}

// BackfillWalletFields consumes the pending missing-field count, like the
// real implementation zeroes absent balance fields exactly once.
func (f *fakeStore) BackfillWalletFields(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.backfillErr != nil {
		return 0, f.backfillErr
	}
	touched := f.missingFields
	f.missingFields = 0
	return touched, nil
}

var memberSeq int

// paidMember builds a payment-confirmed member whose referral chain hangs off
// referredBy. The zero code means the member refers nobody.
func paidMember(code, referredBy string) *models.Member {
	memberSeq++
	return &models.Member{
		ID:            primitive.NewObjectID(),
		UID:           fmt.Sprintf("uid-%d", memberSeq),
		ReferralCode:  code,
		ReferredBy:    referredBy,
		PaymentStatus: models.PaymentPaid,
	}
}

func withTier(m *models.Member, tier string, level int) *models.Member {
	m.Leadership = &models.LeadershipStatus{Tier: tier, Level: level}
	return m
}
