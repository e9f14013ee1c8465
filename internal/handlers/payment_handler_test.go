package handlers_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/rakibalmuqtadir286-byte/bijoy313/internal/handlers"
	"github.com/rakibalmuqtadir286-byte/bijoy313/internal/models"
	"github.com/rakibalmuqtadir286-byte/bijoy313/internal/payments"
	"github.com/rakibalmuqtadir286-byte/bijoy313/internal/utils"
)

// validGateway serves a validator API that confirms every transaction.
func validGateway(t *testing.T, tranID string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"status":"VALID","tran_id":"%s","amount":"313.00","currency":"BDT","val_id":"VAL-1"}`, tranID)
	}))
}

func ipnRequest(tranID string) *http.Request {
	body := strings.NewReader("val_id=VAL-1&tran_id=" + tranID)
	req := httptest.NewRequest(http.MethodPost, "/payments/ipn", body)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestPaymentHandler_IPN(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	if mt.Client != nil {
		defer mt.Client.Disconnect(context.Background())
	}

	mt.Run("failed order update surfaces as 500", func(mt *mtest.T) {
		gateway := validGateway(mt.T, "TXN-1")
		defer gateway.Close()

		handler := handlers.PaymentHandler{
			OrderCol:    mt.Coll,
			DepositCol:  mt.Coll,
			PaymentCol:  mt.Coll,
			WalletCol:   mt.Coll,
			MemberCol:   mt.Coll,
			Gateway:     payments.NewClient(gateway.URL, "store", "pass"),
			AuditLogger: utils.Logger{},
		}

		router := mux.NewRouter()
		router.HandleFunc("/payments/ipn", handler.IPN).Methods("POST")

		mt.AddMockResponses(
			// payment log insert
			mtest.CreateSuccessResponse(),
			// deposit lookup finds nothing, so it is a product order
			mtest.CreateCursorResponse(0, "test.deposit", mtest.FirstBatch),
			// order status update fails
			mtest.CreateCommandErrorResponse(mtest.CommandError{
				Code:    11600,
				Message: "interrupted at shutdown",
				Name:    "InterruptedAtShutdown",
			}),
		)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, ipnRequest("TXN-1"))

		res := w.Result()
		defer res.Body.Close()

		if res.StatusCode != http.StatusInternalServerError {
			t.Errorf("expected status InternalServerError so the gateway redelivers, got %v", res.Status)
		}
	})

	mt.Run("settled deposit is not credited twice", func(mt *mtest.T) {
		gateway := validGateway(mt.T, "TXN-2")
		defer gateway.Close()

		handler := handlers.PaymentHandler{
			OrderCol:    mt.Coll,
			DepositCol:  mt.Coll,
			PaymentCol:  mt.Coll,
			WalletCol:   mt.Coll,
			MemberCol:   mt.Coll,
			Gateway:     payments.NewClient(gateway.URL, "store", "pass"),
			AuditLogger: utils.Logger{},
		}

		router := mux.NewRouter()
		router.HandleFunc("/payments/ipn", handler.IPN).Methods("POST")

		mt.AddMockResponses(
			// payment log insert
			mtest.CreateSuccessResponse(),
			// deposit lookup returns a wallet deposit
			mtest.CreateCursorResponse(0, "test.deposit", mtest.FirstBatch, bson.D{
				{Key: "paymentId", Value: "TXN-2"},
				{Key: "uid", Value: "firebase-uid-1"},
				{Key: "amount", Value: 313.0},
				{Key: "type", Value: models.DepositTypeWallet},
				{Key: "paymentStatus", Value: models.PaymentCompleted},
			}),
			// the guarded status flip matches nothing: already settled
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}),
		)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, ipnRequest("TXN-2"))

		res := w.Result()
		defer res.Body.Close()

		if res.StatusCode != http.StatusOK {
			t.Errorf("expected status OK, got %v", res.Status)
		}

		var resp struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
		if resp.Message != "Deposit already settled" {
			t.Errorf("expected the already-settled reply, got %q", resp.Message)
		}
	})

	mt.Run("missing tran_id is rejected", func(mt *mtest.T) {
		handler := handlers.PaymentHandler{
			PaymentCol:  mt.Coll,
			AuditLogger: utils.Logger{},
		}

		router := mux.NewRouter()
		router.HandleFunc("/payments/ipn", handler.IPN).Methods("POST")

		body := strings.NewReader("val_id=VAL-1")
		req := httptest.NewRequest(http.MethodPost, "/payments/ipn", body)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		res := w.Result()
		defer res.Body.Close()

		if res.StatusCode != http.StatusBadRequest {
			t.Errorf("expected status BadRequest, got %v", res.Status)
		}
	})
}
