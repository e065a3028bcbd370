package affiliate

import (
	"encoding/json"
	"net/url"
	"time"

	"paisaback/pkg/cashback"
)

// FlipkartAdapter builds links straight on the store URL with affiliate
// query params and verifies webhooks with HMAC-SHA256 (hex).
type FlipkartAdapter struct {
	Secret string
}

func NewFlipkartAdapter(secret string) *FlipkartAdapter {
	return &FlipkartAdapter{Secret: secret}
}

func (a *FlipkartAdapter) Network() string         { return "flipkart" }
func (a *FlipkartAdapter) SignatureHeader() string { return "X-FK-Affiliate-Sig" }

func (a *FlipkartAdapter) GenerateLink(req LinkRequest) (string, error) {
	u, err := url.Parse(req.TargetURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("affid", req.PartnerID)
	q.Set("affExtParam1", req.SubID)
	q.Set("affExtParam2", req.SubjectID)
	if req.CouponCode != "" {
		q.Set("affExtParam3", req.CouponCode)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (a *FlipkartAdapter) ValidateSignature(payload []byte, signatureHeader string) bool {
	return checkHMACHex(a.Secret, payload, signatureHeader)
}

type flipkartMoney struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

type flipkartPayload struct {
	OrderID             string        `json:"orderId"`
	SaleAmount          flipkartMoney `json:"saleAmount"`
	TentativeCommission flipkartMoney `json:"tentativeCommission"`
	Status              string        `json:"status"` // tentative | approved | cancelled | disapproved
	AffExtParam1        string        `json:"affExtParam1"`
	ProductTitle        string        `json:"productTitle"`
	OrderDate           string        `json:"orderDate"`
}

func (a *FlipkartAdapter) Normalize(payload []byte) (*ConversionEvent, error) {
	var p flipkartPayload
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
	case "cancelled", "disapproved":
		status = EventRejected
	}
	ts, err := time.Parse(time.RFC3339, p.OrderDate)
	if err != nil {
		ts = time.Now()
	}
	return &ConversionEvent{
		OrderID:          p.OrderID,
		OrderAmountPaise: cashback.RupeesToPaise(p.SaleAmount.Amount),
		CommissionPaise:  cashback.RupeesToPaise(p.TentativeCommission.Amount),
		Status:           status,
		Timestamp:        ts,
		ProductName:      p.ProductTitle,
		TrackingID:       p.AffExtParam1,
	}, nil
}
