package rbac

import (
	"sort"
	"sync"
)

type Policy struct {
	mu        sync.RWMutex
	rolePerms map[string]map[Permission]struct{}
}

func NewPolicy(roles []Role) *Policy {
	p := &Policy{rolePerms: map[string]map[Permission]struct{}{}}
	p.Replace(roles)
	return p
}

func (p *Policy) Allowed(userRoles []string, perm Permission) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, r := range userRoles {
		if perms, ok := p.rolePerms[r]; ok {
			if _, ok := perms[perm]; ok {
				return true
			}
		}
	}
	return false
}

// PermissionsForRoles returns the sorted union of permissions for the
// provided roles.
func (p *Policy) PermissionsForRoles(roles []string) []Permission {
	p.mu.RLock()
	defer p.mu.RUnlock()
	set := map[Permission]struct{}{}
	for _, r := range roles {
		if perms, ok := p.rolePerms[r]; ok {
			for perm := range perms {
				set[perm] = struct{}{}
			}
		}
	}
	out := make([]Permission, 0, len(set))
	for perm := range set {
		out = append(out, perm)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// DefaultPermissionNames returns the permission names the default policy
// grants the role, sorted. Used to stamp capability lists onto records
// that carry their own permission set.
func DefaultPermissionNames(role string) []string {
	perms := defaultPolicy.PermissionsForRoles([]string{role})
	out := make([]string, len(perms))
	for i, perm := range perms {
		out[i] = string(perm)
	}
	return out
}

var defaultPolicy = NewPolicy(DefaultRoles())

func (p *Policy) Replace(roles []Role) {
	p.mu.Lock()
	defer p.mu.Unlock()
	rp := make(map[string]map[Permission]struct{})
	for _, r := range roles {
		m := make(map[Permission]struct{})
		for _, perm := range r.Permissions {
			m[perm] = struct{}{}
		}
		rp[r.Name] = m
	}
	p.rolePerms = rp
}
