package auth

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/gobwas/glob"
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/strategy-hub/pkg/util"
)

// Decision is the outcome of evaluating the access policy for a request.
type Decision int

const (
	Allow Decision = iota
	AuthenticationRequired
	AccessDenied
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case AuthenticationRequired:
		return "authentication_required"
	case AccessDenied:
		return "access_denied"
	default:
		return fmt.Sprintf("decision(%d)", int(d))
	}
}

type requirementKind int

const (
	requirePermitAll requirementKind = iota
	requireAuthenticated
	requireAnyRole
)

// Requirement is the identity state a rule demands.
type Requirement struct {
	kind  requirementKind
	roles []Role
}

// PermitAll lets anonymous callers through.
func PermitAll() Requirement {
	return Requirement{kind: requirePermitAll}
}

// Authenticated demands any identity, guest included.
func Authenticated() Requirement {
	return Requirement{kind: requireAuthenticated}
}

// AnyRole demands an identity carrying at least one of roles.
func AnyRole(roles ...Role) Requirement {
	return Requirement{kind: requireAnyRole, roles: roles}
}

func (r Requirement) evaluate(identity *Identity) Decision {
	switch r.kind {
	case requirePermitAll:
		return Allow
	case requireAuthenticated:
		if identity == nil {
			return AuthenticationRequired
		}
		return Allow
	default:
		if identity == nil {
			return AuthenticationRequired
		}
		if !identity.HasAnyRole(r.roles...) {
			return AccessDenied
		}
		return Allow
	}
}

// Rule maps path patterns and methods to a Requirement. Patterns use glob
// syntax with '/' as separator: '*' matches one segment, '**' any depth.
// An empty Methods list matches every method.
type Rule struct {
	Patterns []string
	Methods  []string
	Require  Requirement
}

type compiledRule struct {
	patterns []glob.Glob
	methods  map[string]struct{}
	require  Requirement
}

func (r compiledRule) matches(method, reqPath string) bool {
	if len(r.methods) > 0 {
		if _, ok := r.methods[method]; !ok {
			return false
		}
	}
	for _, g := range r.patterns {
		if g.Match(reqPath) {
			return true
		}
	}
	return false
}

// AccessPolicy evaluates an ordered rule table, first match wins. Requests
// matching no rule require an identity.
type AccessPolicy struct {
	rules []compiledRule
}

// NewAccessPolicy compiles rules. It fails on invalid glob syntax.
func NewAccessPolicy(rules []Rule) (*AccessPolicy, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for i, rule := range rules {
		if len(rule.Patterns) == 0 {
			return nil, fmt.Errorf("rule %d has no patterns", i)
		}
		cr := compiledRule{require: rule.Require}
		for _, p := range rule.Patterns {
			g, err := glob.Compile(p, '/')
			if err != nil {
				return nil, fmt.Errorf("rule %d pattern %q: %w", i, p, err)
			}
			cr.patterns = append(cr.patterns, g)
		}
		if len(rule.Methods) > 0 {
			cr.methods = make(map[string]struct{}, len(rule.Methods))
			for _, m := range rule.Methods {
				cr.methods[strings.ToUpper(m)] = struct{}{}
			}
		}
		compiled = append(compiled, cr)
	}
	return &AccessPolicy{rules: compiled}, nil
}

// Decide evaluates the policy for one request. The path is canonicalized
// first, so every spelling of a protected path meets that path's rule.
func (p *AccessPolicy) Decide(method, requestPath string, identity *Identity) Decision {
	method = strings.ToUpper(method)
	canonical := CanonicalPath(requestPath)
	for _, rule := range p.rules {
		if rule.matches(method, canonical) {
			return rule.require.evaluate(identity)
		}
	}
	return Authenticated().evaluate(identity)
}

// CanonicalPath percent-decodes, lower-cases and cleans p: doubled slashes,
// dot segments and a trailing slash are removed.
func CanonicalPath(p string) string {
	if decoded, err := url.PathUnescape(p); err == nil {
		p = decoded
	}
	return path.Clean("/" + strings.ToLower(p))
}

// Handle enforces the policy; it must run after Authenticator.Handle.
func (p *AccessPolicy) Handle(c *fiber.Ctx) error {
	identity, _ := IdentityFromCtx(c)
	switch p.Decide(c.Method(), c.Path(), identity) {
	case AuthenticationRequired:
		return apperrors.NewUnauthorized("authentication required")
	case AccessDenied:
		return apperrors.NewForbidden("access denied")
	default:
		return c.Next()
	}
}
