package affiliate

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"encoding/json"
	"time"

	"paisaback/pkg/cashback"
)

const impactDefaultTemplate = "https://goto.impact.com/c/{partner}?url={ulp}&subId1={subid}&subId2={uid}"

// ImpactAdapter signs webhooks with HMAC-SHA1, base64 encoded.
type ImpactAdapter struct {
	Secret string
}

func NewImpactAdapter(secret string) *ImpactAdapter {
	return &ImpactAdapter{Secret: secret}
}

func (a *ImpactAdapter) Network() string         { return "impact" }
func (a *ImpactAdapter) SignatureHeader() string { return "X-Impact-Signature" }

func (a *ImpactAdapter) GenerateLink(req LinkRequest) (string, error) {
	tpl := req.URLTemplate
	if tpl == "" {
		tpl = impactDefaultTemplate
	}
	link := expandTemplate(tpl, req)
	if req.CouponCode != "" {
		link += "&subId3=" + req.CouponCode
	}
	return link, nil
}

func (a *ImpactAdapter) ValidateSignature(payload []byte, signatureHeader string) bool {
	if signatureHeader == "" {
		return false
	}
	mac := hmac.New(sha1.New, []byte(a.Secret))
	mac.Write(payload)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(signatureHeader), []byte(expected))
}

type impactPayload struct {
	EventType  string  `json:"EventType"` // SALE | LEAD | CLICK ...
	OrderID    string  `json:"OrderId"`
	SaleAmount float64 `json:"SaleAmount"`
	Payout     float64 `json:"Payout"`
	State      string  `json:"State"` // PENDING | APPROVED | REVERSED
	SubID1     string  `json:"SubId1"`
	EventDate  string  `json:"EventDate"`
}

func (a *ImpactAdapter) Normalize(payload []byte) (*ConversionEvent, error) {
	var p impactPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, ErrBadPayload
	}
	// Impact posts click and lead events on the same endpoint; only sales
	// are conversions.
	if p.EventType != "SALE" {
		return nil, nil
	}
	if p.OrderID == "" {
		return nil, ErrBadPayload
	}
	status := EventPending
	switch p.State {
	case "APPROVED":
		status = EventApproved
	case "REVERSED":
		status = EventRejected
	}
	ts, err := time.Parse(time.RFC3339, p.EventDate)
	if err != nil {
		ts = time.Now()
	}
	return &ConversionEvent{
		OrderID:          p.OrderID,
		OrderAmountPaise: cashback.RupeesToPaise(p.SaleAmount),
		CommissionPaise:  cashback.RupeesToPaise(p.Payout),
		Status:           status,
		Timestamp:        ts,
		TrackingID:       p.SubID1,
	}, nil
}
