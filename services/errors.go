package services

import (
	"fmt"
	"net/http"
)

// Kind groups errors by how the caller should react
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindState
	KindPolicy
	KindExhausted
	KindConflict
	KindUnauthorized
)

// Error is a domain error with a stable machine readable code.
// errors.Is compares codes, so a sentinel matches any error built from it.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Details map[string]interface{}
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func (e *Error) ErrorCode() string {
	return e.Code
}

func (e *Error) ErrorDetails() map[string]interface{} {
	return e.Details
}

func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation, KindState:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindPolicy, KindExhausted:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// WithMessage copies e with a new message, keeping kind and code
func (e *Error) WithMessage(format string, args ...interface{}) *Error {
	return &Error{Kind: e.Kind, Code: e.Code, Message: fmt.Sprintf(format, args...), Details: e.Details}
}

// WithDetails copies e and attaches details for the client
func (e *Error) WithDetails(details map[string]interface{}) *Error {
	return &Error{Kind: e.Kind, Code: e.Code, Message: e.Message, Details: details}
}

func newError(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// NewValidationError builds a request validation error
func NewValidationError(message string) *Error {
	return newError(KindValidation, "validation_error", message)
}

var (
	ErrUserNotFound      = newError(KindNotFound, "user_not_found", "User not found")
	ErrCampaignNotFound  = newError(KindNotFound, "campaign_not_found", "Campaign not found")
	ErrLocationNotFound  = newError(KindNotFound, "location_not_found", "Location not found or inactive")
	ErrPrizeNotFound     = newError(KindNotFound, "prize_not_found", "Prize not found")
	ErrPrizeRuleNotFound = newError(KindNotFound, "prize_rule_not_found", "Prize rule not found")
	ErrAdminNotFound     = newError(KindNotFound, "admin_not_found", "Admin not found")

	ErrPhoneNotVerified   = newError(KindState, "phone_not_verified", "Phone number not verified")
	ErrCampaignInactive   = newError(KindState, "campaign_inactive", "Campaign is not active")
	ErrCampaignNotRunning = newError(KindState, "campaign_not_running", "Campaign is not currently running")
	ErrLocationInactive   = newError(KindState, "location_inactive", "Store outlet is not active")

	ErrOutOfRange         = newError(KindPolicy, "out_of_range", "You are outside the allowed spin area")
	ErrCooldownActive     = newError(KindPolicy, "cooldown_active", "You have already spun recently")
	ErrUserDailyLimit     = newError(KindPolicy, "user_daily_limit", "Maximum wins per day reached")
	ErrCampaignDailyLimit = newError(KindPolicy, "campaign_daily_limit", "Maximum wins per day reached for this campaign")
	ErrLocationDailyLimit = newError(KindPolicy, "location_daily_limit", "Maximum wins per location reached")

	ErrNoPrizeRules       = newError(KindExhausted, "no_prize_rules", "No prize rules configured for this campaign")
	ErrNoPrizesConfigured = newError(KindExhausted, "no_prizes_configured", "No prizes found for the configured prize rules")
	ErrNoActivePrizes     = newError(KindExhausted, "no_active_prizes", "No active prizes available for this campaign")
	ErrNoPrizesAvailable  = newError(KindExhausted, "no_prizes_available", "No prizes available. All prizes have reached their daily or location limits. Please try again later.")

	ErrOTPNotFound    = newError(KindValidation, "otp_not_found", "No OTP found. Please request a new one.")
	ErrOTPExpired     = newError(KindValidation, "otp_expired", "OTP has expired. Please request a new one.")
	ErrOTPMaxAttempts = newError(KindValidation, "otp_max_attempts", "Maximum verification attempts exceeded. Please request a new OTP.")
	ErrOTPInvalid     = newError(KindValidation, "otp_invalid", "Invalid OTP.")

	ErrUserExists          = newError(KindConflict, "user_exists", "User already exists")
	ErrDuplicatePrizeRule  = newError(KindConflict, "duplicate_prize_rule", "A prize rule for this campaign and prize already exists")
	ErrReferencedBySpins   = newError(KindConflict, "referenced_by_spins", "Record has spin history and cannot be deleted")
	ErrDuplicateAdmin      = newError(KindConflict, "duplicate_admin", "Username or email already in use")
	ErrInvalidCredentials  = newError(KindUnauthorized, "invalid_credentials", "Invalid username or password")
	ErrAccountLocked       = newError(KindUnauthorized, "account_locked", "Too many failed attempts. Try again later.")
	ErrInsufficientRole    = newError(KindPolicy, "insufficient_role", "You do not have permission to perform this action")
	ErrConsentRequired     = newError(KindValidation, "consent_required", "Consent is required to participate")
	ErrInvalidProbability  = newError(KindValidation, "invalid_probability", "Probability must be between 0 and 1")
	ErrInvalidCampaignDate = newError(KindValidation, "invalid_campaign_dates", "Start date must not be after end date")
)
