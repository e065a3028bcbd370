package affiliate

import (
	"crypto/subtle"
	"encoding/json"
	"strconv"
	"time"

	"paisaback/pkg/cashback"
)

const cuelinksDefaultTemplate = "https://linksredirect.com/?pub_id={partner}&url={ulp}&subid={subid}"

// CuelinksAdapter authenticates webhooks with a static shared token
// (Cuelinks does not sign bodies).
type CuelinksAdapter struct {
	Token string
}

func NewCuelinksAdapter(token string) *CuelinksAdapter {
	return &CuelinksAdapter{Token: token}
}

func (a *CuelinksAdapter) Network() string         { return "cuelinks" }
func (a *CuelinksAdapter) SignatureHeader() string { return "X-Cuelinks-Token" }

func (a *CuelinksAdapter) GenerateLink(req LinkRequest) (string, error) {
	tpl := req.URLTemplate
	if tpl == "" {
		tpl = cuelinksDefaultTemplate
	}
	return expandTemplate(tpl, req), nil
}

func (a *CuelinksAdapter) ValidateSignature(payload []byte, signatureHeader string) bool {
	if signatureHeader == "" || a.Token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(signatureHeader), []byte(a.Token)) == 1
}

// Cuelinks reports amounts as strings.
type cuelinksPayload struct {
	TransactionID int64  `json:"id"`
	OrderID       string `json:"order_id"`
	SaleAmount    string `json:"sale_amount"`
	Commission    string `json:"commission"`
	Status        string `json:"status"` // pending | validated | cancelled
	AffSub        string `json:"aff_sub"`
	CampaignName  string `json:"campaign_name"`
	TransactionAt string `json:"transaction_datetime"`
}

func (a *CuelinksAdapter) Normalize(payload []byte) (*ConversionEvent, error) {
	var p cuelinksPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, ErrBadPayload
	}
	if p.OrderID == "" {
		return nil, ErrBadPayload
	}
	amount, err := strconv.ParseFloat(p.SaleAmount, 64)
	if err != nil {
		return nil, ErrBadPayload
	}
	commission := 0.0
	if p.Commission != "" {
		if commission, err = strconv.ParseFloat(p.Commission, 64); err != nil {
			return nil, ErrBadPayload
		}
	}
	status := EventPending
	switch p.Status {
	case "validated":
		status = EventApproved
	case "cancelled":
		status = EventRejected
	}
	ts, err := time.Parse(time.RFC3339, p.TransactionAt)
	if err != nil {
		ts = time.Now()
	}
	return &ConversionEvent{
		OrderID:          p.OrderID,
		OrderAmountPaise: cashback.RupeesToPaise(amount),
		CommissionPaise:  cashback.RupeesToPaise(commission),
		Status:           status,
		Timestamp:        ts,
		ProductName:      p.CampaignName,
		TrackingID:       p.AffSub,
	}, nil
}
