package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
)

// SMSNotifier sends alerts through the bulk SMS HTTP API. It is strictly
// best-effort: failures are logged and never propagated, so a gateway outage
// cannot fail the operation that triggered the alert.
type SMSNotifier struct {
	APIURL      string
	APIKey      string
	SenderID    string
	AdminNumber string
	Client      *http.Client
	Log         *logrus.Logger
}

func NewSMSNotifier(apiURL, apiKey, senderID, adminNumber string, log *logrus.Logger) *SMSNotifier {
	return &SMSNotifier{
		APIURL:      apiURL,
		APIKey:      apiKey,
		SenderID:    senderID,
		AdminNumber: adminNumber,
		Client:      &http.Client{Timeout: 10 * time.Second},
		Log:         log,
	}
}

// NotifyAdmin sends a message to the configured admin number. Call it from a
// goroutine when the caller must not wait.
func (n *SMSNotifier) NotifyAdmin(ctx context.Context, message string) {
	n.Send(ctx, n.AdminNumber, message)
}

func (n *SMSNotifier) Send(ctx context.Context, number, message string) {
	if n == nil || n.APIURL == "" {
		return
	}

	params := url.Values{}
	params.Set("api_key", n.APIKey)
	params.Set("senderid", n.SenderID)
	params.Set("number", number)
	params.Set("message", message)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.APIURL+"?"+params.Encode(), nil)
	if err != nil {
		n.Log.WithError(err).Warn("sms: building request failed")
		return
	}

	resp, err := n.Client.Do(req)
	if err != nil {
		n.Log.WithError(err).Warn("sms: send failed")
		return
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		n.Log.Warn(fmt.Sprintf("sms: gateway returned %s", resp.Status))
		return
	}
	n.Log.WithField("number", number).Info("sms sent")
}
