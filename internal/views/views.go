// Package views derives the single active screen of the client from three
// inputs: URL-carried recovery signals, the session-persisted view, and the
// resolved auth state. One canonical transition table replaces the divergent
// ad hoc string switches of earlier app revisions.
package views

import (
	"net/url"
	"strings"

	"github.com/oso-hr/timetracking-api/internal/models"
)

type View string

const (
	ViewLogin          View = "login"
	ViewForgotPassword View = "forgot-password"
	ViewResetPassword  View = "reset-password"
	ViewChangePassword View = "change-password"
	ViewStudent        View = "student"
	ViewAdmin          View = "admin"
	ViewHR             View = "hr"
)

// Valid reports whether v names a known view.
func Valid(v View) bool {
	switch v {
	case ViewLogin, ViewForgotPassword, ViewResetPassword, ViewChangePassword,
		ViewStudent, ViewAdmin, ViewHR:
		return true
	}
	return false
}

// RecoverySignal is what a password-recovery link carries in its URL. A link
// arrives either as ?token=...&type=recovery (straight from the email) or as
// #access_token=...&type=recovery (after the token was exchanged), or as an
// error shape when the link is expired or invalid.
type RecoverySignal struct {
	Recovery         bool
	Token            string // query-shape token, still needs exchanging
	AccessToken      string // fragment-shape token, already exchanged
	ErrorCode        string
	ErrorDescription string
}

// HasError reports whether the URL carried an error shape.
func (s RecoverySignal) HasError() bool {
	return s.ErrorCode != ""
}

// Empty reports whether the URL carried no recovery-related signal at all.
func (s RecoverySignal) Empty() bool {
	return !s.Recovery && !s.HasError()
}

// ParseRecoverySignal extracts the recovery signal from a full URL, checking
// both the query string and the fragment. Bare type=recovery with no token
// yet still counts as a recovery signal.
func ParseRecoverySignal(raw string) RecoverySignal {
	var sig RecoverySignal

	u, err := url.Parse(raw)
	if err != nil {
		return sig
	}

	query := u.Query()
	fragment, _ := url.ParseQuery(u.Fragment)

	if code := query.Get("error_code"); code != "" {
		sig.ErrorCode = code
	} else if e := query.Get("error"); e != "" {
		sig.ErrorCode = e
	} else if code := fragment.Get("error_code"); code != "" {
		sig.ErrorCode = code
	} else if e := fragment.Get("error"); e != "" {
		sig.ErrorCode = e
	}
	if desc := query.Get("error_description"); desc != "" {
		sig.ErrorDescription = desc
	} else if desc := fragment.Get("error_description"); desc != "" {
		sig.ErrorDescription = desc
	}

	if query.Get("type") == "recovery" || fragment.Get("type") == "recovery" {
		sig.Recovery = true
		sig.Token = query.Get("token")
		sig.AccessToken = fragment.Get("access_token")
	}

	// /reset-password with an error shape is a recovery link gone stale
	if sig.HasError() && strings.HasSuffix(u.Path, "/reset-password") {
		sig.Recovery = true
	}

	return sig
}

// AuthState is the resolved authentication input to the view machine.
type AuthState struct {
	Resolved      bool // false while the session is still being checked
	Authenticated bool
	Role          models.Role
}

// RoleView maps a profile role to its home view.
func RoleView(role models.Role) View {
	switch role {
	case models.RoleAdmin:
		return ViewAdmin
	case models.RoleHR:
		return ViewHR
	default:
		return ViewStudent
	}
}

// onRecoveryFlow views are preserved against auth-driven redirects so a
// password reset in progress is never interrupted.
func onRecoveryFlow(v View) bool {
	return v == ViewResetPassword || v == ViewForgotPassword
}

// Resolve derives exactly one active view.
//
// Precedence: URL recovery/error signals force the reset screen; otherwise a
// valid persisted view is restored; once auth resolves, authenticated users
// land on their role view and unauthenticated ones on login, except that
// reset/forgot screens are preserved in both directions.
func Resolve(sig RecoverySignal, persisted View, auth AuthState) View {
	if sig.Recovery || sig.HasError() {
		return ViewResetPassword
	}

	current := ViewLogin
	if Valid(persisted) {
		current = persisted
	}

	if !auth.Resolved {
		return current
	}

	if onRecoveryFlow(current) {
		return current
	}

	if auth.Authenticated {
		return RoleView(auth.Role)
	}
	return ViewLogin
}
