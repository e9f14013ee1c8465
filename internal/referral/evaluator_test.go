package referral

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rakibalmuqtadir286-byte/bijoy313/internal/models"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// seedDirects hangs n paid members off code, optionally labelled with tier.
func seedDirects(store *fakeStore, code string, n int, tier string) {
	for i := 0; i < n; i++ {
		m := paidMember(fmt.Sprintf("%s-d%d", code, i), code)
		if tier != "" {
			withTier(m, tier, 1)
		}
		store.add(m)
	}
}

func TestEvaluateMemberFirstRungPromotion(t *testing.T) {
	root := paidMember("ROOT", "")
	store := newFakeStore(root)
	seedDirects(store, "ROOT", 13, "")

	ev := NewEvaluator(store, testLogger())
	promotions, err := ev.EvaluateMember(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, 1, promotions)
	require.NotNil(t, root.Leadership)
	assert.Equal(t, TierPioneer, root.Leadership.Tier)
	assert.Equal(t, 1, root.Leadership.Level)
	assert.Equal(t, 700.0, root.LeadershipLevelReward)

	w := store.wallet(root.UID)
	assert.Equal(t, 700.0, w.TotalBalance)
	assert.Equal(t, 700.0, w.LeadershipFund)
}

func TestEvaluateMemberIsIdempotent(t *testing.T) {
	root := paidMember("ROOT", "")
	store := newFakeStore(root)
	seedDirects(store, "ROOT", 14, "")

	ev := NewEvaluator(store, testLogger())

	promotions, err := ev.EvaluateMember(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 1, promotions)
	first := store.wallet(root.UID)

	promotions, err = ev.EvaluateMember(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 0, promotions, "a second pass over unchanged data must pay nothing")
	assert.Equal(t, first, store.wallet(root.UID))
}

func TestEvaluateMemberPaysOnlyTheDelta(t *testing.T) {
	root := withTier(paidMember("ROOT", ""), TierPioneer, 1)
	root.LeadershipLevelReward = 700
	store := newFakeStore(root)
	seedDirects(store, "ROOT", 26, "")

	ev := NewEvaluator(store, testLogger())
	promotions, err := ev.EvaluateMember(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, 1, promotions)
	assert.Equal(t, 2, root.Leadership.Level)
	assert.Equal(t, 1400.0, root.LeadershipLevelReward, "one new step on top of the already-paid one")
	assert.Equal(t, 700.0, store.wallet(root.UID).TotalBalance)
}

func TestEvaluateMemberNeverDemotes(t *testing.T) {
	root := withTier(paidMember("ROOT", ""), TierPioneer, 2)
	store := newFakeStore(root)
	seedDirects(store, "ROOT", 13, "")

	ev := NewEvaluator(store, testLogger())
	promotions, err := ev.EvaluateMember(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, 0, promotions)
	assert.Equal(t, 2, root.Leadership.Level)
	assert.Equal(t, 0, store.creditCalls)
}

func TestEvaluateMemberSecondRung(t *testing.T) {
	root := paidMember("ROOT", "")
	store := newFakeStore(root)
	seedDirects(store, "ROOT", 3, TierPioneer)

	ev := NewEvaluator(store, testLogger())
	promotions, err := ev.EvaluateMember(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, 1, promotions)
	require.NotNil(t, root.Leadership)
	assert.Equal(t, TierAchiever, root.Leadership.Tier)
	assert.Equal(t, 1, root.Leadership.Level)
	assert.Equal(t, 0, root.TierLevel(TierPioneer), "the new label replaces the old tier's")
	assert.Equal(t, 2500.0, store.wallet(root.UID).LeadershipFund)
}

func TestEvaluateMemberDirectCountBoundsTheLevel(t *testing.T) {
	root := paidMember("ROOT", "")
	store := newFakeStore(root)
	seedDirects(store, "ROOT", 3, TierPioneer)
	// A deep downline full of Pioneers raises the cross-generation count but
	// cannot lift the level past what the direct referrals support.
	seedDirects(store, "ROOT-d0", 10, TierPioneer)

	ev := NewEvaluator(store, testLogger())
	promotions, err := ev.EvaluateMember(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, 1, promotions)
	assert.Equal(t, TierAchiever, root.Leadership.Tier)
	assert.Equal(t, 1, root.Leadership.Level)
	assert.Equal(t, 2500.0, store.wallet(root.UID).TotalBalance)
}

func TestEvaluateMemberLostWriteRaceSkipsTheCredit(t *testing.T) {
	root := paidMember("ROOT", "")
	store := newFakeStore(root)
	seedDirects(store, "ROOT", 13, "")
	store.denyPromotions = true

	ev := NewEvaluator(store, testLogger())
	promotions, err := ev.EvaluateMember(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, 0, promotions)
	assert.Nil(t, root.Leadership)
	assert.Equal(t, 0, store.creditCalls, "a skipped write must never reach the wallet")
}

func TestEvaluateMemberHigherRungNeedsNoOwnLowerLabel(t *testing.T) {
	root := paidMember("ROOT", "")
	store := newFakeStore(root)
	seedDirects(store, "ROOT", 3, TierAchiever)

	ev := NewEvaluator(store, testLogger())
	promotions, err := ev.EvaluateMember(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, 1, promotions)
	assert.Equal(t, TierAmbassador, root.Leadership.Tier)
	assert.Equal(t, 15000.0, store.wallet(root.UID).LeadershipFund)
}

func TestEvaluateMemberUnpaidDirectsDoNotCount(t *testing.T) {
	root := paidMember("ROOT", "")
	store := newFakeStore(root)
	seedDirects(store, "ROOT", 12, "")
	unpaid := paidMember("ROOT-u", "ROOT")
	unpaid.PaymentStatus = models.PaymentUnpaid
	store.add(unpaid)

	ev := NewEvaluator(store, testLogger())
	promotions, err := ev.EvaluateMember(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, 0, promotions)
	assert.Nil(t, root.Leadership)
}
