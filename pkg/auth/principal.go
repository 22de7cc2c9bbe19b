// Package auth carries the authenticated principal through request
// contexts and normalizes the loosely-shaped group claims the identity
// provider emits.
package auth

import (
	"context"
	"strings"

	"tryon-backend/pkg/errors"
)

// Cognito group names used by the authorization policy.
const (
	GroupAdmin      = "Admin"
	GroupSuperAdmin = "SuperAdmin"
	GroupViewData   = "ViewData"
)

// Principal is the verified identity attached to a request. Groups is
// always the normalized slice form; nothing downstream handles the raw
// claim shape.
type Principal struct {
	UserID string
	Email  string
	Groups []string
}

// HasGroup reports membership in a single group.
func (p *Principal) HasGroup(group string) bool {
	for _, g := range p.Groups {
		if g == group {
			return true
		}
	}
	return false
}

// HasAnyGroup reports membership in at least one of the given groups.
func (p *Principal) HasAnyGroup(groups ...string) bool {
	for _, g := range groups {
		if p.HasGroup(g) {
			return true
		}
	}
	return false
}

// IsSuperAdmin reports membership in the highest privilege tier.
func (p *Principal) IsSuperAdmin() bool {
	return p.HasGroup(GroupSuperAdmin)
}

// GroupsJoined renders the groups as the comma-joined audit form persisted
// on brand records.
func (p *Principal) GroupsJoined() string {
	return strings.Join(p.Groups, ",")
}

// NormalizeGroups flattens the group claim, which arrives either as a JSON
// list or as a comma-joined string, into a clean slice.
func NormalizeGroups(raw interface{}) []string {
	switch v := raw.(type) {
	case nil:
		return nil
	case []string:
		return trimGroups(v)
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return trimGroups(out)
	case string:
		return trimGroups(strings.Split(v, ","))
	default:
		return nil
	}
}

func trimGroups(in []string) []string {
	out := in[:0]
	for _, g := range in {
		if g = strings.TrimSpace(g); g != "" {
			out = append(out, g)
		}
	}
	return out
}

type contextKey string

const principalKey contextKey = "principal"

// SetPrincipal attaches the principal to a request context.
func SetPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// GetPrincipal extracts the principal placed in the context by the auth
// middleware.
func GetPrincipal(ctx context.Context) (*Principal, error) {
	p, ok := ctx.Value(principalKey).(*Principal)
	if !ok || p == nil || p.UserID == "" {
		return nil, errors.NewUnauthorizedError("no authenticated principal")
	}
	return p, nil
}
