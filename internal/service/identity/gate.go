package identity

import (
	"fmt"

	"github.com/clinicore/clinic-api/internal/model"
	apperrors "github.com/clinicore/clinic-api/pkg/errors"
)

// Guard is a composable check that admits or rejects an already-resolved
// principal. Guards are pure: no side effects, no storage access.
type Guard func(*model.Principal) (*model.Principal, error)

// Admit returns the principal unchanged when its role bypasses checks or
// the required permission is in its materialized set; otherwise Forbidden.
func Admit(p *model.Principal, required model.PermissionCode) (*model.Principal, error) {
	if p == nil {
		return nil, apperrors.Unauthenticated("", nil)
	}
	if p.Permitted(required) {
		return p, nil
	}
	return nil, apperrors.Forbidden(fmt.Sprintf("missing permission %s", required), nil)
}

// RequirePermission builds a protected operation's guard by partial
// application of Admit. Each operation declares exactly one code.
func RequirePermission(required model.PermissionCode) Guard {
	return func(p *model.Principal) (*model.Principal, error) {
		return Admit(p, required)
	}
}

// Chain composes guards left to right, short-circuiting on the first
// rejection.
func Chain(guards ...Guard) Guard {
	return func(p *model.Principal) (*model.Principal, error) {
		var err error
		for _, g := range guards {
			if p, err = g(p); err != nil {
				return nil, err
			}
		}
		return p, nil
	}
}
