package referral

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rakibalmuqtadir286-byte/bijoy313/internal/models"
)

// MongoStore implements Store against the members and wallets collections.
type MongoStore struct {
	MemberCol *mongo.Collection
	WalletCol *mongo.Collection
}

func NewMongoStore(memberCol, walletCol *mongo.Collection) *MongoStore {
	return &MongoStore{MemberCol: memberCol, WalletCol: walletCol}
}

func (s *MongoStore) PaidMembers(ctx context.Context) ([]models.Member, error) {
	return s.findMembers(ctx, bson.M{"payment": models.PaymentPaid})
}

func (s *MongoStore) AllMembers(ctx context.Context) ([]models.Member, error) {
	return s.findMembers(ctx, bson.M{})
}

func (s *MongoStore) DirectReferrals(ctx context.Context, code string) ([]models.Member, error) {
	if code == "" {
		return nil, nil
	}
	return s.findMembers(ctx, bson.M{
		"referredBy": code,
		"payment":    models.PaymentPaid,
	})
}

func (s *MongoStore) PaidReferredBy(ctx context.Context, codes []string) ([]models.Member, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	return s.findMembers(ctx, bson.M{
		"referredBy": bson.M{"$in": codes},
		"payment":    models.PaymentPaid,
	})
}

func (s *MongoStore) findMembers(ctx context.Context, filter bson.M) ([]models.Member, error) {
	cursor, err := s.MemberCol.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var members []models.Member
	if err := cursor.All(ctx, &members); err != nil {
		return nil, err
	}
	return members, nil
}

// PromoteMember guards the write on the label the evaluator read: the filter
// only matches while the stored leadership document equals member.Leadership.
// A nil label matches documents where the field is missing.
func (s *MongoStore) PromoteMember(ctx context.Context, member models.Member, next models.LeadershipStatus, reward float64) (bool, error) {
	filter := bson.M{
		"_id":        member.ID,
		"leadership": member.Leadership,
	}
	update := bson.M{
		"$set": bson.M{
			"leadership": next,
			"updated_at": time.Now(),
		},
		"$inc": bson.M{"leadershipLevelReward": reward},
	}
	res, err := s.MemberCol.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

func (s *MongoStore) MarkReferralRewarded(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := s.MemberCol.UpdateOne(ctx,
		bson.M{"_id": id, "referralRewarded": bson.M{"$ne": true}},
		bson.M{"$set": bson.M{"referralRewarded": true}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

func (s *MongoStore) CreditWallet(ctx context.Context, ownerUID string, credit WalletCredit) error {
	inc := bson.M{"totalBalance": credit.Total}
	if credit.Referer != 0 {
		inc["refererBalance"] = credit.Referer
	}
	if credit.LeadershipFund != 0 {
		inc["leadershipFund"] = credit.LeadershipFund
	}

	_, err := s.WalletCol.UpdateOne(ctx,
		bson.M{"uid": ownerUID},
		bson.M{
			"$inc":         inc,
			"$setOnInsert": bson.M{"created_at": time.Now()},
		},
		options.Update().SetUpsert(true),
	)
	return err
}

func (s *MongoStore) BackfillWalletFields(ctx context.Context) (int64, error) {
	var touched int64
	for _, field := range models.WalletBalanceFields {
		res, err := s.WalletCol.UpdateMany(ctx,
			bson.M{field: bson.M{"$exists": false}},
			bson.M{"$set": bson.M{field: 0}},
		)
		if err != nil {
			return touched, err
		}
		touched += res.ModifiedCount
	}
	return touched, nil
}
