package app

import "errors"

// Sentinel errors returned by the banking service. Handlers translate these
// into envelope messages; everything else is surfaced as an internal error.
var (
	ErrNotAuthenticated    = errors.New("no operator is signed in")
	ErrFullRightsRequired  = errors.New("operator does not hold full rights")
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrLoginThrottled      = errors.New("too many failed login attempts")
	ErrNegativeAmount      = errors.New("amount must not be negative")
	ErrSameAccount         = errors.New("source and destination accounts are the same")
	ErrInvalidCustomerData = errors.New("first name, last name and address line1/city/postcode are required")
	ErrInvalidAccountData  = errors.New("account name is required and overdraft limit must not be negative")
	ErrInvalidOperatorData = errors.New("names, address, username and password are required")
	ErrPasswordTooShort    = errors.New("password must be at least 8 characters")
	ErrPasswordMismatch    = errors.New("new password and confirmation do not match")
)
