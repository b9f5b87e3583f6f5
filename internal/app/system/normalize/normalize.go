// Package normalize provides the input clean-up applied before instructor and
// course values are stored or used as lookup keys.
package normalize

import "strings"

// Canonical instructor roles.
const (
	RoleCoOwner  = "Co-owner"
	RoleManager  = "Manager"
	RoleObserver = "Observer"
	RoleTutor    = "Tutor"
	RoleCustom   = "Custom"
)

var roles = map[string]string{
	"co-owner": RoleCoOwner,
	"manager":  RoleManager,
	"observer": RoleObserver,
	"tutor":    RoleTutor,
	"custom":   RoleCustom,
}

// Email trims and lowercases an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding space and collapses inner runs of whitespace.
// Case is preserved.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// CourseID trims surrounding space. Course IDs are case-sensitive.
func CourseID(s string) string {
	return strings.TrimSpace(s)
}

// Role maps s case-insensitively onto a canonical role name. Unknown roles
// are returned trimmed but otherwise untouched, with ok=false.
func Role(s string) (role string, ok bool) {
	s = strings.TrimSpace(s)
	if r, found := roles[strings.ToLower(s)]; found {
		return r, true
	}
	return s, false
}

// QueryParam trims a free-text query parameter. Case is preserved.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}
