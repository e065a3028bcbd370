package affiliate

import (
	"encoding/json"
	"time"

	"paisaback/pkg/cashback"
)

const admitadDefaultTemplate = "https://ad.admitad.com/g/{partner}/?ulp={ulp}&subid={subid}&subid1={uid}"

// AdmitadAdapter signs webhooks with HMAC-SHA256 (hex) over the raw body.
type AdmitadAdapter struct {
	Secret string
}

func NewAdmitadAdapter(secret string) *AdmitadAdapter {
	return &AdmitadAdapter{Secret: secret}
}

func (a *AdmitadAdapter) Network() string         { return "admitad" }
func (a *AdmitadAdapter) SignatureHeader() string { return "X-Admitad-Signature" }

func (a *AdmitadAdapter) GenerateLink(req LinkRequest) (string, error) {
	tpl := req.URLTemplate
	if tpl == "" {
		tpl = admitadDefaultTemplate
	}
	link := expandTemplate(tpl, req)
	if req.CouponCode != "" {
		link += "&subid2=" + req.CouponCode
	}
	return link, nil
}

func (a *AdmitadAdapter) ValidateSignature(payload []byte, signatureHeader string) bool {
	return checkHMACHex(a.Secret, payload, signatureHeader)
}

type admitadPayload struct {
	ActionID    int64   `json:"action_id"`
	OrderID     string  `json:"order_id"`
	OrderSum    float64 `json:"order_sum"`
	PaymentSum  float64 `json:"payment_sum"`
	Status      string  `json:"status"` // pending | approved | declined
	SubID       string  `json:"subid"`
	ProductName string  `json:"product_name"`
	ActionTime  string  `json:"action_time"`
}

func (a *AdmitadAdapter) Normalize(payload []byte) (*ConversionEvent, error) {
	var p admitadPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, ErrBadPayload
	}
	if p.OrderID == "" {
		return nil, ErrBadPayload
	}
	status := EventPending
	switch p.Status {
	case "approved":
		status = EventApproved
	case "declined":
		status = EventRejected
	}
	ts, err := time.Parse(time.RFC3339, p.ActionTime)
	if err != nil {
		ts = time.Now()
	}
	return &ConversionEvent{
		OrderID:          p.OrderID,
		OrderAmountPaise: cashback.RupeesToPaise(p.OrderSum),
		CommissionPaise:  cashback.RupeesToPaise(p.PaymentSum),
		Status:           status,
		Timestamp:        ts,
		ProductName:      p.ProductName,
		TrackingID:       p.SubID,
	}, nil
}
