package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/rakibalmuqtadir286-byte/bijoy313/internal/handlers"
	"github.com/rakibalmuqtadir286-byte/bijoy313/internal/utils"
)

func microJobTestHandler(mt *mtest.T) handlers.MicroJobHandler {
	return handlers.MicroJobHandler{
		JobCol:       mt.Coll,
		AppliedCol:   mt.Coll,
		PendingCol:   mt.Coll,
		CompletedCol: mt.Coll,
		CancelCol:    mt.Coll,
		WalletCol:    mt.Coll,
		AuditLogger:  utils.Logger{},
	}
}

func TestMicroJobHandler_ApproveReport(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	if mt.Client != nil {
		defer mt.Client.Disconnect(context.Background())
	}

	reportID := primitive.NewObjectID()
	jobID := primitive.NewObjectID()

	pendingDoc := bson.D{
		{Key: "_id", Value: reportID},
		{Key: "jobId", Value: jobID},
		{Key: "uid", Value: "worker-uid-1"},
	}
	jobDoc := bson.D{
		{Key: "_id", Value: jobID},
		{Key: "price", Value: 5.0},
		{Key: "leftVacancy", Value: 3},
	}

	mt.Run("successful approval", func(mt *mtest.T) {
		handler := microJobTestHandler(mt)

		router := mux.NewRouter()
		router.HandleFunc("/microjobs/reports/{id}/approve", handler.ApproveReport).Methods("POST")

		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "test.pending", mtest.FirstBatch, pendingDoc),
			mtest.CreateCursorResponse(0, "test.jobs", mtest.FirstBatch, jobDoc),
			// the claim: findAndModify removes the pending report
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: pendingDoc}),
			// archive insert
			mtest.CreateSuccessResponse(),
			// wallet credit
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
			// vacancy decrement
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
		)

		req := httptest.NewRequest(http.MethodPost, "/microjobs/reports/"+reportID.Hex()+"/approve", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		res := w.Result()
		defer res.Body.Close()

		if res.StatusCode != http.StatusOK {
			t.Errorf("expected status OK, got %v", res.Status)
		}
	})

	mt.Run("lost claim never reaches the wallet", func(mt *mtest.T) {
		handler := microJobTestHandler(mt)

		router := mux.NewRouter()
		router.HandleFunc("/microjobs/reports/{id}/approve", handler.ApproveReport).Methods("POST")

		// A racing approval removed the pending report between the read and
		// the claim. No wallet or vacancy responses are queued: reaching
		// either would fail the test with an unexpected-command error.
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "test.pending", mtest.FirstBatch, pendingDoc),
			mtest.CreateCursorResponse(0, "test.jobs", mtest.FirstBatch, jobDoc),
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}),
		)

		req := httptest.NewRequest(http.MethodPost, "/microjobs/reports/"+reportID.Hex()+"/approve", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		res := w.Result()
		defer res.Body.Close()

		if res.StatusCode != http.StatusConflict {
			t.Errorf("expected status Conflict, got %v", res.Status)
		}
	})

	mt.Run("unknown report", func(mt *mtest.T) {
		handler := microJobTestHandler(mt)

		router := mux.NewRouter()
		router.HandleFunc("/microjobs/reports/{id}/approve", handler.ApproveReport).Methods("POST")

		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.pending", mtest.FirstBatch))

		req := httptest.NewRequest(http.MethodPost, "/microjobs/reports/"+reportID.Hex()+"/approve", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		res := w.Result()
		defer res.Body.Close()

		if res.StatusCode != http.StatusNotFound {
			t.Errorf("expected status NotFound, got %v", res.Status)
		}
	})
}
