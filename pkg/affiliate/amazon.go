package affiliate

import (
	"crypto/hmac"
	"encoding/base64"
	"encoding/json"
	"net/url"
	"time"

	"paisaback/pkg/cashback"
)

// AmazonAdapter tags the store URL with the associate id and verifies
// webhooks with HMAC-SHA256, base64 encoded.
type AmazonAdapter struct {
	Secret string
}

func NewAmazonAdapter(secret string) *AmazonAdapter {
	return &AmazonAdapter{Secret: secret}
}

func (a *AmazonAdapter) Network() string         { return "amazon" }
func (a *AmazonAdapter) SignatureHeader() string { return "X-Amz-Signature" }

func (a *AmazonAdapter) GenerateLink(req LinkRequest) (string, error) {
	u, err := url.Parse(req.TargetURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("tag", req.PartnerID)
	q.Set("ascsubtag", req.SubID)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (a *AmazonAdapter) ValidateSignature(payload []byte, signatureHeader string) bool {
	if signatureHeader == "" {
		return false
	}
	expected := base64.StdEncoding.EncodeToString(hmacSHA256(a.Secret, payload))
	return hmac.Equal([]byte(signatureHeader), []byte(expected))
}

type amazonPayload struct {
	OrderID          string  `json:"orderId"`
	TotalValue       float64 `json:"totalValue"`
	CommissionEarned float64 `json:"commissionEarned"`
	OrderStatus      string  `json:"orderStatus"` // pending | shipped | delivered | returned | cancelled
	SubTag           string  `json:"subTag"`
	ProductName      string  `json:"productName"`
	EventTime        string  `json:"eventTime"`
}

func (a *AmazonAdapter) Normalize(payload []byte) (*ConversionEvent, error) {
	var p amazonPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, ErrBadPayload
	}
	if p.OrderID == "" {
		return nil, ErrBadPayload
	}
	status := EventPending
	switch p.OrderStatus {
	case "delivered":
		status = EventApproved
	case "returned", "cancelled":
		status = EventRejected
	}
	ts, err := time.Parse(time.RFC3339, p.EventTime)
	if err != nil {
		ts = time.Now()
	}
	return &ConversionEvent{
		OrderID:          p.OrderID,
		OrderAmountPaise: cashback.RupeesToPaise(p.TotalValue),
		CommissionPaise:  cashback.RupeesToPaise(p.CommissionEarned),
		Status:           status,
		Timestamp:        ts,
		ProductName:      p.ProductName,
		TrackingID:       p.SubTag,
	}, nil
}
