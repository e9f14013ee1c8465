package referral

// Tier is one rung of the leadership ladder. A member qualifies on a rung
// once per DirectThreshold qualifying direct referrals, bounded by the
// cross-generation count when CrossGenThreshold is set; every qualification
// step pays Reward once.
type Tier struct {
	Name              string
	DirectThreshold   int     // qualifying direct referrals needed per step
	Prerequisite      string  // tier the qualifying referrals must hold; empty means any paid referral counts
	CrossGenThreshold int     // prerequisite holders required across the downline; 0 disables the check
	Reward            float64 // paid per qualification step
}

const (
	TierPioneer    = "Pioneer"
	TierAchiever   = "Achiever"
	TierAmbassador = "Ambassador"
	TierDirector   = "Director"
	TierLegend     = "Legend"
)

// GenerationCap bounds every downline walk.
const GenerationCap = 10

// Ladder holds the five tiers in ascending order. Order matters: a higher
// rung's prerequisite check reads labels written by the rungs before it.
var Ladder = []Tier{
	{Name: TierPioneer, DirectThreshold: 13, Reward: 700},
	{Name: TierAchiever, DirectThreshold: 3, Prerequisite: TierPioneer, CrossGenThreshold: 2, Reward: 2500},
	{Name: TierAmbassador, DirectThreshold: 3, Prerequisite: TierAchiever, CrossGenThreshold: 3, Reward: 15000},
	{Name: TierDirector, DirectThreshold: 4, Prerequisite: TierAmbassador, CrossGenThreshold: 3, Reward: 60000},
	{Name: TierLegend, DirectThreshold: 4, Prerequisite: TierDirector, CrossGenThreshold: 3, Reward: 500000},
}
