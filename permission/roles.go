package permission

import (
	"sort"

	"github.com/agosto18/cafeauth/jwt"
)

// RoleSet is an immutable set of normalized role names.
type RoleSet struct {
	names map[string]struct{}
}

// NewRoleSet normalizes names and returns the set. Empty names are dropped,
// so "ROLE_" alone contributes nothing.
func NewRoleSet(names ...string) *RoleSet {
	rs := &RoleSet{names: make(map[string]struct{}, len(names))}
	for _, name := range names {
		name = jwt.NormalizeRole(name)
		if name == "" {
			continue
		}
		rs.names[name] = struct{}{}
	}
	return rs
}

// Has reports whether role, in bare or prefixed spelling, is in the set.
func (rs *RoleSet) Has(role string) bool {
	if rs == nil {
		return false
	}
	role = jwt.NormalizeRole(role)
	if role == "" {
		return false
	}
	_, ok := rs.names[role]
	return ok
}

// Len returns the number of distinct roles.
func (rs *RoleSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.names)
}

// Names returns the normalized role names in sorted order.
func (rs *RoleSet) Names() []string {
	if rs == nil {
		return nil
	}
	out := make([]string, 0, len(rs.names))
	for name := range rs.names {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Equal reports whether both sets hold the same normalized names.
func (rs *RoleSet) Equal(other *RoleSet) bool {
	if rs.Len() != other.Len() {
		return false
	}
	for name := range rs.namesOrEmpty() {
		if !other.Has(name) {
			return false
		}
	}
	return true
}

func (rs *RoleSet) namesOrEmpty() map[string]struct{} {
	if rs == nil {
		return nil
	}
	return rs.names
}
