package domain

import "errors"

var (
	ErrValidation         = errors.New("invalid input")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCoupon      = errors.New("coupon inactive or expired")
	ErrNoAffiliateLink    = errors.New("no active affiliate link for store")
	ErrExpired            = errors.New("click token expired")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrStateConflict      = errors.New("illegal state transition")
	ErrUnsupportedNetwork = errors.New("unsupported affiliate network")
	ErrClickNotFound      = errors.New("no click record for conversion")
)
