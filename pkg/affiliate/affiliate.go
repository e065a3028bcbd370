// Package affiliate integrates the supported affiliate networks. Each
// adapter encapsulates one deep-link format, one webhook signature scheme
// and one payload shape; the registry is a flat lookup keyed by network id.
package affiliate

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/url"
	"strings"
	"time"
)

var (
	ErrUnsupportedNetwork = errors.New("affiliate: unsupported network")
	ErrNoTemplate         = errors.New("affiliate: link template not configured")
	ErrBadPayload         = errors.New("affiliate: unparseable payload")
)

// Normalized conversion statuses.
const (
	EventPending  = "PENDING"
	EventApproved = "APPROVED"
	EventRejected = "REJECTED"
)

// ConversionEvent is the network-independent shape of a reported purchase.
type ConversionEvent struct {
	OrderID          string
	OrderAmountPaise int64
	CommissionPaise  int64 // 0 when the network does not report payout
	Status           string
	Timestamp        time.Time
	ProductName      string
	TrackingID       string // click token echoed back through the network subid
}

// LinkRequest carries everything an adapter needs to build a redirect URL.
type LinkRequest struct {
	TargetURL   string // store landing page
	URLTemplate string // per-store template from AffiliateLink config
	PartnerID   string
	SubID       string // click token, round-tripped as the network subid
	SubjectID   string // user id or session id
	CouponCode  string
}

// Adapter is the per-network capability contract.
type Adapter interface {
	Network() string
	SignatureHeader() string
	GenerateLink(req LinkRequest) (string, error)
	ValidateSignature(payload []byte, signatureHeader string) bool
	// Normalize decodes a webhook payload. It fails closed on unparseable
	// input and returns (nil, nil) for event types that are not
	// conversions.
	Normalize(payload []byte) (*ConversionEvent, error)
}

// Registry maps network ids to adapters.
type Registry struct {
	adapters map[string]Adapter
}

func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: make(map[string]Adapter, len(adapters))}
	for _, a := range adapters {
		r.adapters[a.Network()] = a
	}
	return r
}

func (r *Registry) Get(network string) (Adapter, error) {
	a, ok := r.adapters[strings.ToLower(network)]
	if !ok {
		return nil, ErrUnsupportedNetwork
	}
	return a, nil
}

func (r *Registry) Networks() []string {
	out := make([]string, 0, len(r.adapters))
	for k := range r.adapters {
		out = append(out, k)
	}
	return out
}

// expandTemplate substitutes the link placeholders. TargetURL is
// query-escaped since it always lands inside a query parameter.
func expandTemplate(tpl string, req LinkRequest) string {
	return strings.NewReplacer(
		"{ulp}", url.QueryEscape(req.TargetURL),
		"{partner}", req.PartnerID,
		"{subid}", req.SubID,
		"{uid}", req.SubjectID,
		"{coupon}", url.QueryEscape(req.CouponCode),
	).Replace(tpl)
}

func hmacSHA256(secret string, payload []byte) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return mac.Sum(nil)
}

func checkHMACHex(secret string, payload []byte, signature string) bool {
	if signature == "" {
		return false
	}
	expected := hex.EncodeToString(hmacSHA256(secret, payload))
	return hmac.Equal([]byte(signature), []byte(expected))
}
