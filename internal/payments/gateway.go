package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to the hosted payment gateway. The gateway owns the card/MFS
// flow end to end; this service only opens sessions and validates IPN
// callbacks against the validator API.
type Client struct {
	BaseURL       string
	StoreID       string
	StorePassword string
	HTTP          *http.Client
}

func NewClient(baseURL, storeID, storePassword string) *Client {
	return &Client{
		BaseURL:       strings.TrimRight(baseURL, "/"),
		StoreID:       storeID,
		StorePassword: storePassword,
		HTTP:          &http.Client{Timeout: 30 * time.Second},
	}
}

type SessionRequest struct {
	Amount          float64
	Currency        string
	TransactionID   string
	ProductName     string
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	CustomerAddress string
	SuccessURL      string
	FailURL         string
	CancelURL       string
	IPNURL          string
}

type SessionResponse struct {
	Status         string `json:"status"`
	FailedReason   string `json:"failedreason"`
	SessionKey     string `json:"sessionkey"`
	GatewayPageURL string `json:"GatewayPageURL"`
}

// InitiateSession opens a hosted checkout session and returns the page URL
// the customer is redirected to.
func (c *Client) InitiateSession(ctx context.Context, req SessionRequest) (*SessionResponse, error) {
	form := url.Values{}
	form.Set("store_id", c.StoreID)
	form.Set("store_passwd", c.StorePassword)
	form.Set("total_amount", fmt.Sprintf("%.2f", req.Amount))
	form.Set("currency", req.Currency)
	form.Set("tran_id", req.TransactionID)
	form.Set("success_url", req.SuccessURL)
	form.Set("fail_url", req.FailURL)
	form.Set("cancel_url", req.CancelURL)
	form.Set("ipn_url", req.IPNURL)
	form.Set("product_name", req.ProductName)
	form.Set("product_category", "Deposit")
	form.Set("product_profile", "general")
	form.Set("shipping_method", "NO")
	form.Set("cus_name", req.CustomerName)
	form.Set("cus_email", req.CustomerEmail)
	form.Set("cus_add1", req.CustomerAddress)
	form.Set("cus_phone", req.CustomerPhone)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.BaseURL+"/gwprocess/v4/api.php", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var session SessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("decoding gateway response: %w", err)
	}
	if session.GatewayPageURL == "" {
		return nil, fmt.Errorf("gateway rejected session: %s", session.FailedReason)
	}
	return &session, nil
}

type ValidationResponse struct {
	Status        string `json:"status"`
	TranID        string `json:"tran_id"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
	CardType      string `json:"card_type"`
	ValidatedOn   string `json:"validated_on"`
	RiskLevel     string `json:"risk_level"`
	StoreAmount   string `json:"store_amount"`
	BankTranID    string `json:"bank_tran_id"`
	CurrencyType  string `json:"currency_type"`
	GatewayTxnRef string `json:"val_id"`
}

// Valid reports whether the gateway confirmed the transaction.
func (v *ValidationResponse) Valid() bool {
	return v.Status == "VALID" || v.Status == "VALIDATED"
}

// ValidatePayment asks the validator API about a val_id received on the IPN
// channel. IPN payloads are never trusted on their own.
func (c *Client) ValidatePayment(ctx context.Context, valID string) (*ValidationResponse, error) {
	params := url.Values{}
	params.Set("val_id", valID)
	params.Set("store_id", c.StoreID)
	params.Set("store_passwd", c.StorePassword)
	params.Set("v", "1")
	params.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.BaseURL+"/validator/api/validationserverAPI.php?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var validation ValidationResponse
	if err := json.NewDecoder(resp.Body).Decode(&validation); err != nil {
		return nil, fmt.Errorf("decoding validation response: %w", err)
	}
	return &validation, nil
}
