package constants

import "time"

// Session / context keys
const (
	ContextKeyUserID = "user_id"

	SessionKeyRecovery        = "recovery"
	SessionKeyView            = "active_view"
	SessionKeyLanguage        = "language"
	SessionKeyTemplateSubject = "rejection_template_subject"
	SessionKeyTemplateBody    = "rejection_template_body"
)

// Password policy
const MinPasswordLength = 8

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Reset tokens expire after this duration.
const ResetTokenTTL = time.Hour

// DefaultSendDelay is the pause between consecutive email dispatch attempts.
const DefaultSendDelay = 2 * time.Second

// SettingLockDateToToday forces students to log hours only for the current date.
const SettingLockDateToToday = "lock_date_to_today"

// DefaultLanguage is used when no language preference is stored.
const DefaultLanguage = "de"
