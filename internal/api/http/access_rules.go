package http

import (
	"net/http"

	"github.com/spec-kit/strategy-hub/internal/auth"
)

// AccessRules is the ordered route table consulted before any handler runs.
// Paths not listed fall through to the policy default, which requires an
// established identity of any kind.
var AccessRules = []auth.Rule{
	{Patterns: []string{"/health/*", "/metrics"}, Methods: []string{http.MethodGet}, Require: auth.PermitAll()},
	{
		Patterns: []string{"/api/auth/register", "/api/auth/login", "/api/auth/guest", "/api/auth/refresh"},
		Methods:  []string{http.MethodPost},
		Require:  auth.PermitAll(),
	},
	{Patterns: []string{"/api/admin", "/api/admin/**"}, Require: auth.AnyRole(auth.RoleAdmin)},
	{Patterns: []string{"/api/catalog", "/api/catalog/**"}, Methods: []string{http.MethodGet}, Require: auth.PermitAll()},
	{Patterns: []string{"/api/catalog", "/api/catalog/**"}, Require: auth.AnyRole(auth.RoleAdmin)},
	{Patterns: []string{"/api/users", "/api/users/**"}, Require: auth.AnyRole(auth.RoleUser, auth.RoleAdmin)},
}
