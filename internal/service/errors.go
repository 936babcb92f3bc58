package service

import "errors"

var (
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrPaymentNotFound      = errors.New("payment record not found")
	ErrValidation           = errors.New("validation failed")
	ErrNoRenewalPeriod      = errors.New("subscription has no renewal period")
	ErrInvalidCredentials   = errors.New("invalid credentials")
)
