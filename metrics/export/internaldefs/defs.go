package internaldefs

import (
	"github.com/agosto18/cafeauth"
)

// CounterDef names one client counter.
type CounterDef struct {
	ID   cafeauth.MetricID
	Name string
	Help string
}

// HistogramDef names one client histogram.
type HistogramDef struct {
	ID   cafeauth.MetricID
	Name string
	Help string
}

// AuditDroppedName is the counter for audit events dropped on a full buffer.
const AuditDroppedName = "cafeauth_audit_dropped_total"

var CounterDefs = []CounterDef{
	{ID: cafeauth.MetricLoginSuccess, Name: "cafeauth_login_success_total", Help: "Successful logins."},
	{ID: cafeauth.MetricLoginFailure, Name: "cafeauth_login_failure_total", Help: "Failed logins."},
	{ID: cafeauth.MetricLogout, Name: "cafeauth_logout_total", Help: "Explicit logouts."},
	{ID: cafeauth.MetricLogoutFailure, Name: "cafeauth_logout_failure_total", Help: "Logouts whose storage clear failed."},
	{ID: cafeauth.MetricForcedLogout, Name: "cafeauth_forced_logout_total", Help: "Sessions ended by a 401 or 403 response."},
	{ID: cafeauth.MetricSessionExpiredCleared, Name: "cafeauth_session_expired_cleared_total", Help: "Expired sessions cleared on read."},
	{ID: cafeauth.MetricSessionMalformedCleared, Name: "cafeauth_session_malformed_cleared_total", Help: "Unreadable sessions cleared on read."},
	{ID: cafeauth.MetricGuardAllow, Name: "cafeauth_guard_allow_total", Help: "Navigations allowed."},
	{ID: cafeauth.MetricGuardRedirectLogin, Name: "cafeauth_guard_redirect_login_total", Help: "Navigations redirected to login."},
	{ID: cafeauth.MetricGuardRedirectUnauthorized, Name: "cafeauth_guard_redirect_unauthorized_total", Help: "Navigations redirected to the unauthorized page."},
	{ID: cafeauth.MetricRequestAuthorized, Name: "cafeauth_request_authorized_total", Help: "API requests sent with a credential."},
	{ID: cafeauth.MetricRequestAnonymous, Name: "cafeauth_request_anonymous_total", Help: "API requests sent without a credential."},
	{ID: cafeauth.MetricResponseDenied, Name: "cafeauth_response_denied_total", Help: "API responses with status 401 or 403."},
}

var HistogramDefs = []HistogramDef{
	{ID: cafeauth.MetricLoginLatency, Name: "cafeauth_login_latency_seconds", Help: "Login round-trip latency."},
}

// HistogramBounds are the upper bounds, in seconds, of every bucket but the
// last, which is unbounded.
var HistogramBounds = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}

// HistogramBoundSuffix names each bucket, including the unbounded one, in
// a form usable inside an instrument name.
var HistogramBoundSuffix = []string{
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"1",
	"2_5",
	"5",
	"inf",
}

// NormalizeBuckets copies raw into a fixed array, padding with zeros.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets turns per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
