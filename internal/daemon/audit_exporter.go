package daemon

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/rakibalmuqtadir286-byte/bijoy313/internal/models"
	"github.com/rakibalmuqtadir286-byte/bijoy313/internal/utils"
)

// AuditExporter ships audit log entries that have not been exported yet and
// marks them exported. Run is scheduled on the shared cron; a failed pass is
// retried wholesale on the next tick.
type AuditExporter struct {
	Coll *mongo.Collection
	Log  *logrus.Logger
}

func (a *AuditExporter) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cursor, err := a.Coll.Find(ctx, bson.M{"exported": false})
	if err != nil {
		a.Log.WithError(err).Error("audit export: query failed")
		return
	}

	var entries []models.AuditLog
	if err := cursor.All(ctx, &entries); err != nil {
		a.Log.WithError(err).Error("audit export: decode failed")
		return
	}
	if len(entries) == 0 {
		return
	}

	if err := utils.ExportAuditLogs(a.Log, entries); err != nil {
		a.Log.WithError(err).Error("audit export: sink rejected batch")
		return
	}

	ids := make([]primitive.ObjectID, 0, len(entries))
	for i := range entries {
		ids = append(ids, entries[i].ID)
	}
	if _, err := a.Coll.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		bson.M{"$set": bson.M{"exported": true}},
	); err != nil {
		a.Log.WithError(err).Error("audit export: marking entries failed")
	}
}
