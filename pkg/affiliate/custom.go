package affiliate

import (
	"encoding/json"
	"time"

	"paisaback/pkg/cashback"
)

// CustomAdapter covers direct merchant integrations that post our own
// webhook format: HMAC-SHA256 hex signature, click token in the body.
type CustomAdapter struct {
	Secret string
}

func NewCustomAdapter(secret string) *CustomAdapter {
	return &CustomAdapter{Secret: secret}
}

func (a *CustomAdapter) Network() string         { return "custom" }
func (a *CustomAdapter) SignatureHeader() string { return "X-Webhook-Signature" }

func (a *CustomAdapter) GenerateLink(req LinkRequest) (string, error) {
	if req.URLTemplate == "" {
		return "", ErrNoTemplate
	}
	return expandTemplate(req.URLTemplate, req), nil
}

func (a *CustomAdapter) ValidateSignature(payload []byte, signatureHeader string) bool {
	return checkHMACHex(a.Secret, payload, signatureHeader)
}

type customPayload struct {
	ClickToken string  `json:"click_token"`
	OrderID    string  `json:"order_id"`
	Amount     float64 `json:"amount"`
	Commission float64 `json:"commission"`
	Status     string  `json:"status"` // pending | approved | rejected
	Product    string  `json:"product"`
	OccurredAt string  `json:"occurred_at"`
}

func (a *CustomAdapter) Normalize(payload []byte) (*ConversionEvent, error) {
	var p customPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, ErrBadPayload
	}
	if p.OrderID == "" || p.ClickToken == "" {
		return nil, ErrBadPayload
	}
	status := EventPending
	switch p.Status {
	case "approved":
		status = EventApproved
	case "rejected":
		status = EventRejected
	}
	ts, err := time.Parse(time.RFC3339, p.OccurredAt)
	if err != nil {
		ts = time.Now()
	}
	return &ConversionEvent{
		OrderID:          p.OrderID,
		OrderAmountPaise: cashback.RupeesToPaise(p.Amount),
		CommissionPaise:  cashback.RupeesToPaise(p.Commission),
		Status:           status,
		Timestamp:        ts,
		ProductName:      p.Product,
		TrackingID:       p.ClickToken,
	}, nil
}
