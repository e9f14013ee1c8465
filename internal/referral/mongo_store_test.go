package referral

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/rakibalmuqtadir286-byte/bijoy313/internal/models"
)

func TestMongoStoreBackfillWalletFields(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	if mt.Client != nil {
		defer mt.Client.Disconnect(context.Background())
	}

	mt.Run("sums modified counts across all balance fields", func(mt *mtest.T) {
		store := NewMongoStore(mt.Coll, mt.Coll)

		// One update per balance field; two old wallets miss the first two
		// fields, the rest are present everywhere.
		responses := []bson.D{
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 2}, bson.E{Key: "nModified", Value: 2}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 2}, bson.E{Key: "nModified", Value: 2}),
		}
		for i := 2; i < len(models.WalletBalanceFields); i++ {
			responses = append(responses,
				mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))
		}
		mt.AddMockResponses(responses...)

		touched, err := store.BackfillWalletFields(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(4), touched)
	})

	mt.Run("stops at the first failing field", func(mt *mtest.T) {
		store := NewMongoStore(mt.Coll, mt.Coll)

		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
			mtest.CreateCommandErrorResponse(mtest.CommandError{
				Code:    11600,
				Message: "interrupted at shutdown",
				Name:    "InterruptedAtShutdown",
			}),
		)

		touched, err := store.BackfillWalletFields(context.Background())
		require.Error(t, err)
		assert.Equal(t, int64(1), touched, "work done before the failure is still reported")
	})
}
