package referral

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rakibalmuqtadir286-byte/bijoy313/internal/models"
)

func testSweeper(store *fakeStore) *Sweeper {
	log := testLogger()
	return NewSweeper(store, NewEvaluator(store, log), 120, time.Minute, log)
}

func TestReferralBonusSweepPaysExactlyOnce(t *testing.T) {
	referrer := paidMember("REF", "")
	joiner := paidMember("J1", "REF")
	store := newFakeStore(referrer, joiner)

	s := testSweeper(store)
	s.ReferralBonusSweep()

	w := store.wallet(referrer.UID)
	assert.Equal(t, 120.0, w.TotalBalance)
	assert.Equal(t, 120.0, w.RefererBalance)

	s.ReferralBonusSweep()
	assert.Equal(t, w, store.wallet(referrer.UID), "a settled member must never pay again")
}

func TestReferralBonusSweepSkipsUnpaidMembers(t *testing.T) {
	referrer := paidMember("REF", "")
	joiner := paidMember("J1", "REF")
	joiner.PaymentStatus = models.PaymentUnpaid
	store := newFakeStore(referrer, joiner)

	testSweeper(store).ReferralBonusSweep()

	assert.Equal(t, 0.0, store.wallet(referrer.UID).TotalBalance)
	assert.False(t, joiner.ReferralRewarded)
}

func TestReferralBonusSweepToleratesDanglingReferrer(t *testing.T) {
	joiner := paidMember("J1", "NOBODY")
	store := newFakeStore(joiner)

	testSweeper(store).ReferralBonusSweep()

	assert.False(t, joiner.ReferralRewarded, "the flag stays clear so a late registration can still settle it")
	assert.Equal(t, 0, store.creditCalls)
}

func TestReferralBonusSweepCreditsTotalAndRefererTogether(t *testing.T) {
	referrer := paidMember("REF", "")
	store := newFakeStore(referrer)
	for _, code := range []string{"A", "B", "C"} {
		store.add(paidMember(code, "REF"))
	}

	testSweeper(store).ReferralBonusSweep()

	w := store.wallet(referrer.UID)
	assert.Equal(t, 360.0, w.TotalBalance)
	assert.Equal(t, w.TotalBalance, w.RefererBalance, "total must move in lockstep with the sub-balance")
}

func TestLeadershipSweepPromotesEveryEligibleMember(t *testing.T) {
	rootA := paidMember("RA", "")
	rootB := paidMember("RB", "")
	store := newFakeStore(rootA, rootB)
	seedDirects(store, "RA", 13, "")
	seedDirects(store, "RB", 13, "")

	testSweeper(store).LeadershipSweep()

	require.NotNil(t, rootA.Leadership)
	require.NotNil(t, rootB.Leadership)
	assert.Equal(t, TierPioneer, rootA.Leadership.Tier)
	assert.Equal(t, TierPioneer, rootB.Leadership.Tier)
}

func TestLeadershipSweepContinuesPastFailures(t *testing.T) {
	root := paidMember("RA", "")
	store := newFakeStore(root)
	seedDirects(store, "RA", 13, "")
	store.creditErr = errors.New("wallet collection unavailable")

	s := testSweeper(store)
	s.LeadershipSweep() // must not panic; the failure is logged per member

	require.NotNil(t, root.Leadership, "the label write landed before the wallet failure")
	assert.Equal(t, 1, store.creditCalls)
}

func TestWalletReconcileSweepBackfillsOnce(t *testing.T) {
	store := newFakeStore()
	store.missingFields = 3

	s := testSweeper(store)
	s.WalletReconcileSweep()
	assert.Equal(t, int64(0), store.missingFields, "every missing field gets backfilled")

	s.WalletReconcileSweep()
	assert.Equal(t, int64(0), store.missingFields, "a clean wallet set stays untouched")
}

func TestWalletReconcileSweepSurvivesStoreErrors(t *testing.T) {
	store := newFakeStore()
	store.backfillErr = errors.New("wallet collection unavailable")

	testSweeper(store).WalletReconcileSweep() // must not panic, only log
}
