package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Wallet holds the per-member balances. TotalBalance is the spendable sum;
// every credit to a sub-balance carries a matching credit to TotalBalance.
type Wallet struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerUID          string             `bson:"uid" json:"uid"`
	TotalBalance      float64            `bson:"totalBalance" json:"total_balance"`
	EarningBalance    float64            `bson:"earningBalance" json:"earning_balance"`
	WithdrawalBalance float64            `bson:"withdrawalBalance" json:"withdrawal_balance"`
	RefererBalance    float64            `bson:"refererBalance" json:"referer_balance"`
	MicroJobEarning   float64            `bson:"microJobEarning" json:"micro_job_earning"`
	LeadershipFund    float64            `bson:"leadershipFund" json:"leadership_fund"`
	ActiveJobEarning  float64            `bson:"activeJobEarning" json:"active_job_earning"`
	CreatedAt         time.Time          `bson:"created_at" json:"created_at"`
}

const WalletEntity = "wallet"

// WalletBalanceFields lists every balance field a wallet document must carry.
// The reconciliation sweep backfills any that are missing on old documents.
var WalletBalanceFields = []string{
	"totalBalance",
	"earningBalance",
	"withdrawalBalance",
	"refererBalance",
	"microJobEarning",
	"leadershipFund",
	"activeJobEarning",
}
