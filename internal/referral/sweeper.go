package referral

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rakibalmuqtadir286-byte/bijoy313/internal/models"
)

// Sweeper owns the recurring background passes: leadership evaluation,
// one-time referral sign-up bonuses, and wallet field reconciliation. Every
// pass is self-healing: a failure on one member is logged and the pass moves
// on to the next. Nothing here surfaces to request handlers.
type Sweeper struct {
	Store     Store
	Evaluator *Evaluator
	Bonus     float64 // one-time sign-up bonus paid to the referrer
	OpTimeout time.Duration
	Log       *logrus.Logger
}

func NewSweeper(store Store, evaluator *Evaluator, bonus float64, opTimeout time.Duration, log *logrus.Logger) *Sweeper {
	return &Sweeper{Store: store, Evaluator: evaluator, Bonus: bonus, OpTimeout: opTimeout, Log: log}
}

func (s *Sweeper) sweepContext() (context.Context, context.CancelFunc) {
	if s.OpTimeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), s.OpTimeout)
}

// LeadershipSweep evaluates the full ladder for every paid member.
func (s *Sweeper) LeadershipSweep() {
	started := time.Now()
	ctx, cancel := s.sweepContext()
	defer cancel()

	members, err := s.Store.PaidMembers(ctx)
	if err != nil {
		s.Log.WithError(err).Error("leadership sweep: loading paid members failed")
		return
	}

	promotions := 0
	failures := 0
	for i := range members {
		n, err := s.Evaluator.EvaluateMember(ctx, &members[i])
		promotions += n
		if err != nil {
			failures++
			s.Log.WithError(err).WithField("member", members[i].UID).Warn("leadership sweep: member evaluation failed")
		}
	}

	s.Log.WithFields(logrus.Fields{
		"members":    len(members),
		"promotions": promotions,
		"failures":   failures,
		"took":       time.Since(started).String(),
	}).Info("leadership sweep completed")
}

// ReferralBonusSweep pays the one-time sign-up bonus to the referrer of every
// paid member that has not been settled yet. The conditional flip of
// referralRewarded is the dedup guard: only the caller whose update reports a
// modification credits the referrer.
func (s *Sweeper) ReferralBonusSweep() {
	ctx, cancel := s.sweepContext()
	defer cancel()

	members, err := s.Store.AllMembers(ctx)
	if err != nil {
		s.Log.WithError(err).Error("referral bonus sweep: loading members failed")
		return
	}

	byCode := make(map[string]int, len(members))
	for i := range members {
		if members[i].ReferralCode != "" {
			byCode[members[i].ReferralCode] = i
		}
	}

	rewarded := 0
	for i := range members {
		m := &members[i]
		if m.PaymentStatus != models.PaymentPaid || m.ReferredBy == "" || m.ReferralRewarded {
			continue
		}

		ri, ok := byCode[m.ReferredBy]
		if !ok || members[ri].UID == "" {
			// Dangling referredBy: tolerated, the member is skipped without
			// setting the flag so a later registration can still settle it.
			continue
		}
		referrer := &members[ri]

		modified, err := s.Store.MarkReferralRewarded(ctx, m.ID)
		if err != nil {
			s.Log.WithError(err).WithField("member", m.UID).Warn("referral bonus sweep: marking member failed")
			continue
		}
		if !modified {
			continue
		}

		if err := s.Store.CreditWallet(ctx, referrer.UID, WalletCredit{Total: s.Bonus, Referer: s.Bonus}); err != nil {
			s.Log.WithError(err).WithFields(logrus.Fields{
				"member":   m.UID,
				"referrer": referrer.UID,
			}).Error("referral bonus sweep: crediting referrer failed")
			continue
		}
		rewarded++
	}

	s.Log.WithField("rewarded", rewarded).Info("referral bonus sweep completed")
}

// WalletReconcileSweep backfills balance fields that older wallet documents
// are missing, so every later $inc lands on a numeric field.
func (s *Sweeper) WalletReconcileSweep() {
	ctx, cancel := s.sweepContext()
	defer cancel()

	touched, err := s.Store.BackfillWalletFields(ctx)
	if err != nil {
		s.Log.WithError(err).Error("wallet reconcile sweep failed")
		return
	}
	if touched > 0 {
		s.Log.WithField("wallets", touched).Info("wallet reconcile sweep backfilled fields")
	}
}
