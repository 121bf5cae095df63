// Package gate enforces the authorization boundary for stand administration.
package gate

import (
	"context"
	"log"
	"net/http"

	"github.com/ilus66/Cnol-2025-2/internal/platform/requestctx"
	"github.com/ilus66/Cnol-2025-2/internal/services/congress/session"
	"github.com/ilus66/Cnol-2025-2/internal/services/congress/storage"
)

// Redirect targets for denied requests.
const (
	// IdentificationPath receives callers with no usable session.
	IdentificationPath = "/identification"
	// EspacePath receives authenticated callers who are not exposants.
	EspacePath = "/mon-espace"
)

// InscriptionGetter loads one registrant record.
type InscriptionGetter interface {
	GetInscription(ctx context.Context, inscriptionID string) (storage.Inscription, error)
}

// ExposantGetter loads one exhibitor record.
type ExposantGetter interface {
	GetExposant(ctx context.Context, exposantID string) (storage.Exposant, error)
}

// Gate authorizes stand-administration requests.
//
// The decision runs before any stand data is fetched and is the sole
// authorization boundary: there is no finer-grained permission model beyond
// "is this the exposant's own session".
type Gate struct {
	sessions     *session.Codec
	inscriptions InscriptionGetter
	exposants    ExposantGetter
}

// New creates a gate backed by the given session codec and stores.
func New(sessions *session.Codec, inscriptions InscriptionGetter, exposants ExposantGetter) *Gate {
	return &Gate{
		sessions:     sessions,
		inscriptions: inscriptions,
		exposants:    exposants,
	}
}

// exposantContextKey is the context key for the resolved stand context.
type exposantContextKey struct{}

// WithExposant stores the resolved stand context. A nil exposant records that
// the gate ran but the registrant's stand link did not resolve.
func WithExposant(ctx context.Context, exposant *storage.Exposant) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, exposantContextKey{}, exposant)
}

// ExposantFromContext returns the resolved stand context, which may be nil.
func ExposantFromContext(ctx context.Context) *storage.Exposant {
	if ctx == nil {
		return nil
	}
	value, _ := ctx.Value(exposantContextKey{}).(*storage.Exposant)
	return value
}

// RequireExposant wraps next with the stand-administration decision table:
// no or invalid session redirects to identification, a non-exposant session
// redirects to the generic participant area, and an exposant session passes
// through with its stand context resolved (or nil when the link is broken).
func (g *Gate) RequireExposant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := session.ReadCookie(r)
		if !ok {
			http.Redirect(w, r, IdentificationPath, http.StatusFound)
			return
		}
		identity, err := g.sessions.Resolve(token)
		if err != nil {
			http.Redirect(w, r, IdentificationPath, http.StatusFound)
			return
		}
		if identity.ParticipantType != storage.ParticipantExposant {
			http.Redirect(w, r, EspacePath, http.StatusFound)
			return
		}

		ctx := requestctx.WithRegistrantID(r.Context(), identity.RegistrantID)
		ctx = WithExposant(ctx, g.resolveExposant(ctx, identity.RegistrantID))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// resolveExposant follows the registrant's stand link. A broken link degrades
// to a nil stand context instead of failing the request.
func (g *Gate) resolveExposant(ctx context.Context, registrantID string) *storage.Exposant {
	inscription, err := g.inscriptions.GetInscription(ctx, registrantID)
	if err != nil {
		log.Printf("stand context: load inscription %s: %v", registrantID, err)
		return nil
	}
	if inscription.ExposantID == "" {
		return nil
	}
	exposant, err := g.exposants.GetExposant(ctx, inscription.ExposantID)
	if err != nil {
		log.Printf("stand context: load exposant %s: %v", inscription.ExposantID, err)
		return nil
	}
	return &exposant
}
