// Package directory serves exhibitor and stand-staff listings.
package directory

import (
	"context"
	"errors"

	apperrors "github.com/ilus66/Cnol-2025-2/internal/platform/errors"
	"github.com/ilus66/Cnol-2025-2/internal/services/congress/storage"
)

// Service answers read-only listing queries over the registration records.
type Service struct {
	exposants    storage.ExposantStore
	inscriptions storage.InscriptionStore
}

// New creates a directory service backed by the given stores.
func New(exposants storage.ExposantStore, inscriptions storage.InscriptionStore) *Service {
	return &Service{exposants: exposants, inscriptions: inscriptions}
}

// ListExposants returns every exhibitor ordered by name.
func (s *Service) ListExposants(ctx context.Context) ([]storage.Exposant, error) {
	exposants, err := s.exposants.ListExposants(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStoreFailure, "list exposants", err)
	}
	return exposants, nil
}

// ListStaffForExposant returns the staff roster of one stand. The roster is
// keyed by the exhibitor's organisation name, not by the exhibitor reference:
// staff whose organisation string differs from the name, even by case, are
// not part of the roster.
func (s *Service) ListStaffForExposant(ctx context.Context, exposantID string) ([]storage.Inscription, error) {
	exposant, err := s.exposants.GetExposant(ctx, exposantID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperrors.Wrap(apperrors.CodeExposantNotFound, "load exposant", err)
		}
		return nil, apperrors.Wrap(apperrors.CodeStoreFailure, "load exposant", err)
	}
	staff, err := s.inscriptions.ListStaffByOrganisation(ctx, exposant.Nom)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStoreFailure, "list staff", err)
	}
	return staff, nil
}
