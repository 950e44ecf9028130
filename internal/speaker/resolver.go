package speaker

import (
	"strings"

	"github.com/GustavoDePieri/ontop-feedback-dashboard-sub001/internal/types"
)

// Resolve maps a segment's speaker label to seller/customer/unknown using
// the call's attendee metadata. Sellers are checked before customers and the
// first match wins. It never fails; missing attendee data yields unknown.
func Resolve(label string, sellers, customers []types.Attendee) types.SpeakerRole {
	needle := strings.ToLower(strings.TrimSpace(label))
	if needle == "" {
		return types.RoleUnknown
	}

	for _, a := range sellers {
		if matches(needle, a) {
			return types.RoleSeller
		}
	}
	for _, a := range customers {
		if matches(needle, a) {
			return types.RoleCustomer
		}
	}
	return types.RoleUnknown
}

// matches does a case-insensitive substring comparison against the
// attendee's name or email, in either direction: transcripts often carry
// partial names ("John" for "John Smith") or full emails for short labels.
func matches(needle string, a types.Attendee) bool {
	name := strings.ToLower(strings.TrimSpace(a.Name))
	if name != "" && (strings.Contains(name, needle) || strings.Contains(needle, name)) {
		return true
	}
	email := strings.ToLower(strings.TrimSpace(a.Email))
	if email != "" && (strings.Contains(email, needle) || strings.Contains(needle, email)) {
		return true
	}
	return false
}
