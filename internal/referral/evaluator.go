package referral

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/rakibalmuqtadir286-byte/bijoy313/internal/constants"
	"github.com/rakibalmuqtadir286-byte/bijoy313/internal/models"
	"github.com/rakibalmuqtadir286-byte/bijoy313/internal/utils"
)

// Evaluator decides leadership promotions. For each member it runs every
// rung of the ladder in ascending order; a rung that qualifies writes the new
// label and credits the reward through the store.
type Evaluator struct {
	Store Store
	Log   *logrus.Logger
	Audit utils.Logger
}

func NewEvaluator(store Store, log *logrus.Logger) *Evaluator {
	return &Evaluator{Store: store, Log: log}
}

// EvaluateMember runs the full ladder against one member and returns the
// number of promotions applied. The member value is updated in place as
// rungs promote, so a later rung's conditional write guards against the
// label this pass just wrote, not a stale pre-pass one.
func (e *Evaluator) EvaluateMember(ctx context.Context, member *models.Member) (int, error) {
	promotions := 0
	for _, tier := range Ladder {
		promoted, err := e.evaluateTier(ctx, member, tier)
		if err != nil {
			return promotions, fmt.Errorf("tier %s: %w", tier.Name, err)
		}
		if promoted {
			promotions++
		}
	}
	return promotions, nil
}

func (e *Evaluator) evaluateTier(ctx context.Context, member *models.Member, tier Tier) (bool, error) {
	direct, err := e.Store.DirectReferrals(ctx, member.ReferralCode)
	if err != nil {
		return false, err
	}

	qualifying := 0
	if tier.Prerequisite == "" {
		qualifying = len(direct)
	} else {
		for i := range direct {
			if direct[i].HoldsTier(tier.Prerequisite) {
				qualifying++
			}
		}
	}
	if qualifying < tier.DirectThreshold {
		return false, nil
	}

	times := qualifying / tier.DirectThreshold

	if tier.CrossGenThreshold > 0 {
		total, err := CountInGenerations(ctx, e.Store, member.ReferralCode, GenerationCap, tier.Prerequisite)
		if err != nil {
			return false, err
		}
		if total < tier.CrossGenThreshold {
			return false, nil
		}
		if crossTimes := total / tier.CrossGenThreshold; crossTimes < times {
			times = crossTimes
		}
	}

	current := member.TierLevel(tier.Name)
	if times <= current {
		return false, nil
	}

	delta := times - current
	reward := float64(delta) * tier.Reward
	next := models.LeadershipStatus{Tier: tier.Name, Level: times}

	applied, err := e.Store.PromoteMember(ctx, *member, next, reward)
	if err != nil {
		return false, err
	}
	if !applied {
		// Another writer changed the label since we read it. Skip the wallet
		// credit; the next sweep re-evaluates from the fresh state.
		return false, nil
	}

	member.Leadership = &next
	member.LeadershipLevelReward += reward

	if err := e.Store.CreditWallet(ctx, member.UID, WalletCredit{Total: reward, LeadershipFund: reward}); err != nil {
		return true, fmt.Errorf("crediting wallet of %s: %w", member.UID, err)
	}

	e.Audit.Log(ctx, models.MemberEntity, constants.Promote, constants.System, map[string]any{
		"uid":    member.UID,
		"tier":   tier.Name,
		"level":  times,
		"reward": reward,
	})

	if e.Log != nil {
		e.Log.WithFields(logrus.Fields{
			"member": member.UID,
			"tier":   tier.Name,
			"level":  times,
			"reward": reward,
		}).Info("leadership promotion applied")
	}
	return true, nil
}
