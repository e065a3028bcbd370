package domain

const (
	RoleShopper = "SHOPPER"
	RoleAdmin   = "ADMIN"
)

const (
	ClickStatusPending   = "PENDING"
	ClickStatusConverted = "CONVERTED"
	ClickStatusRejected  = "REJECTED"
	ClickStatusExpired   = "EXPIRED"
)

const (
	TxStatusPending   = "PENDING"
	TxStatusApproved  = "APPROVED"
	TxStatusRejected  = "REJECTED"
	TxStatusCancelled = "CANCELLED"
)

const (
	RewardStatusPending  = "PENDING"
	RewardStatusApproved = "APPROVED"
	RewardStatusRejected = "REJECTED"
)

const RewardTypeFirstPurchase = "FIRST_PURCHASE"

const (
	CashbackTypePercent = "PERCENT"
	CashbackTypeFlat    = "FLAT"
)

// Affiliate network identifiers (registry keys and webhook path params).
const (
	NetworkAdmitad  = "admitad"
	NetworkImpact   = "impact"
	NetworkCuelinks = "cuelinks"
	NetworkFlipkart = "flipkart"
	NetworkAmazon   = "amazon"
	NetworkCustom   = "custom"
)
