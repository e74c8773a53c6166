package handlers

import (
	"context"
	"net/http"

	"clinicbook/internal/model"
	"clinicbook/internal/sessions"
)

// SessionResolver maps an opaque token to the actor it belongs to.
type SessionResolver interface {
	Get(ctx context.Context, token string) (sessions.Actor, error)
}

// Guard resolves session tokens to actors and gates handlers by scope.
// Every failure path returns 401 before the wrapped handler runs, so an
// unauthenticated request can have no side effects.
type Guard struct {
	sessions SessionResolver
}

func NewGuard(store SessionResolver) *Guard {
	return &Guard{sessions: store}
}

func (g *Guard) resolve(w http.ResponseWriter, r *http.Request) (sessions.Actor, bool) {
	actor, err := g.sessions.Get(r.Context(), sessions.TokenFromRequest(r))
	if err != nil {
		writeUnauthorized(w)
		return sessions.Actor{}, false
	}
	return actor, true
}

// Patient admits patient sessions only; a staff token on a patient endpoint
// is a 401 like any other bad token.
func (g *Guard) Patient(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := g.resolve(w, r)
		if !ok {
			return
		}
		if !actor.IsPatient() {
			writeUnauthorized(w)
			return
		}
		next(w, r.WithContext(sessions.WithActor(r.Context(), actor)))
	}
}

func (g *Guard) Staff(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := g.resolve(w, r)
		if !ok {
			return
		}
		if !actor.IsStaff() {
			writeUnauthorized(w)
			return
		}
		next(w, r.WithContext(sessions.WithActor(r.Context(), actor)))
	}
}

func (g *Guard) Doctor(next http.HandlerFunc) http.HandlerFunc {
	return g.Staff(func(w http.ResponseWriter, r *http.Request) {
		actor, _ := sessions.ActorFromContext(r.Context())
		if actor.Role != model.RoleDoctor {
			writeUnauthorized(w)
			return
		}
		next(w, r)
	})
}

// Any admits either scope; used by logout.
func (g *Guard) Any(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := g.resolve(w, r)
		if !ok {
			return
		}
		next(w, r.WithContext(sessions.WithActor(r.Context(), actor)))
	}
}
