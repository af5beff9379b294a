package auth

import (
	"net/http"

	"github.com/frahmantamala/leaveflow/internal"
	"github.com/frahmantamala/leaveflow/internal/core/identity"
	"github.com/frahmantamala/leaveflow/internal/transport"
)

// Authorization guards routes by capability. Record-level checks such as decision
// scope stay in the services.
type Authorization struct {
	*transport.BaseHandler
}

func NewAuthorization(baseHandler *transport.BaseHandler) *Authorization {
	return &Authorization{BaseHandler: baseHandler}
}

func (a *Authorization) Check(next http.HandlerFunc, capability identity.Capability) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := identity.PrincipalFromContext(r.Context())
		if !ok {
			a.RequestLogger(r).Warn("authorization check failed: no principal in context", "path", r.URL.Path)
			a.WriteUnauthenticated(w, r)
			return
		}

		if !identity.Allows(p, capability) {
			a.RequestLogger(r).Warn("access denied: insufficient role",
				"role", p.Role,
				"required_capability", capability)
			a.WriteAppError(w, r, internal.ErrInsufficientRole)
			return
		}

		next.ServeHTTP(w, r)
	}
}

func (a *Authorization) Require(capability identity.Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return a.Check(next.ServeHTTP, capability)
	}
}
