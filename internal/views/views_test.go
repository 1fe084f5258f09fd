package views

import (
	"testing"

	"github.com/oso-hr/timetracking-api/internal/models"
	"github.com/stretchr/testify/require"
)

func TestParseRecoverySignal_QueryShape(t *testing.T) {
	sig := ParseRecoverySignal("https://app.example.com/reset-password?token=abc123&type=recovery")
	require.True(t, sig.Recovery)
	require.Equal(t, "abc123", sig.Token)
	require.Empty(t, sig.AccessToken)
	require.False(t, sig.HasError())
}

func TestParseRecoverySignal_FragmentShape(t *testing.T) {
	sig := ParseRecoverySignal("https://app.example.com/#access_token=xyz&type=recovery")
	require.True(t, sig.Recovery)
	require.Equal(t, "xyz", sig.AccessToken)
	require.Empty(t, sig.Token)
}

func TestParseRecoverySignal_ExpiredLink(t *testing.T) {
	sig := ParseRecoverySignal("https://app.example.com/reset-password?error=access_denied&error_code=otp_expired&error_description=Email+link+is+invalid+or+has+expired")
	require.True(t, sig.HasError())
	require.Equal(t, "otp_expired", sig.ErrorCode)
	require.True(t, sig.Recovery)
}

func TestParseRecoverySignal_FragmentError(t *testing.T) {
	sig := ParseRecoverySignal("https://app.example.com/#error=access_denied&error_code=otp_expired")
	require.True(t, sig.HasError())
	require.Equal(t, "otp_expired", sig.ErrorCode)
}

func TestParseRecoverySignal_PlainURL(t *testing.T) {
	sig := ParseRecoverySignal("https://app.example.com/")
	require.True(t, sig.Empty())
}

func TestResolve_RecoveryBeatsEverything(t *testing.T) {
	sig := ParseRecoverySignal("https://app.example.com/reset-password?token=abc&type=recovery")
	auth := AuthState{Resolved: true, Authenticated: true, Role: models.RoleAdmin}

	require.Equal(t, ViewResetPassword, Resolve(sig, ViewAdmin, auth))
}

func TestResolve_ExpiredLinkNeverLandsOnLogin(t *testing.T) {
	sig := ParseRecoverySignal("https://app.example.com/reset-password?error_code=otp_expired")

	// regardless of auth state the error must surface on the reset screen
	require.Equal(t, ViewResetPassword, Resolve(sig, "", AuthState{Resolved: true}))
	require.Equal(t, ViewResetPassword, Resolve(sig, ViewLogin, AuthState{}))
	require.Equal(t, ViewResetPassword,
		Resolve(sig, ViewStudent, AuthState{Resolved: true, Authenticated: true, Role: models.RoleStudent}))
}

func TestResolve_PersistedViewWhileUnresolved(t *testing.T) {
	view := Resolve(RecoverySignal{}, ViewHR, AuthState{})
	require.Equal(t, ViewHR, view)

	view = Resolve(RecoverySignal{}, "garbage", AuthState{})
	require.Equal(t, ViewLogin, view)
}

func TestResolve_AuthenticatedLandsOnRoleView(t *testing.T) {
	auth := AuthState{Resolved: true, Authenticated: true}

	auth.Role = models.RoleStudent
	require.Equal(t, ViewStudent, Resolve(RecoverySignal{}, ViewLogin, auth))

	auth.Role = models.RoleAdmin
	require.Equal(t, ViewAdmin, Resolve(RecoverySignal{}, ViewLogin, auth))

	auth.Role = models.RoleHR
	require.Equal(t, ViewHR, Resolve(RecoverySignal{}, ViewLogin, auth))
}

func TestResolve_UnauthenticatedLandsOnLogin(t *testing.T) {
	view := Resolve(RecoverySignal{}, ViewAdmin, AuthState{Resolved: true})
	require.Equal(t, ViewLogin, view)
}

func TestResolve_RecoveryFlowPreserved(t *testing.T) {
	// an authenticated recovery session stays on the reset screen
	auth := AuthState{Resolved: true, Authenticated: true, Role: models.RoleStudent}
	require.Equal(t, ViewResetPassword, Resolve(RecoverySignal{}, ViewResetPassword, auth))

	// and an unauthenticated one is not bounced to login
	require.Equal(t, ViewForgotPassword,
		Resolve(RecoverySignal{}, ViewForgotPassword, AuthState{Resolved: true}))
}
