// Package registration coordinates exhibitor and staff registration.
package registration

import (
	"context"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/ilus66/Cnol-2025-2/internal/platform/errors"
	"github.com/ilus66/Cnol-2025-2/internal/platform/id"
	"github.com/ilus66/Cnol-2025-2/internal/services/congress/badge"
	"github.com/ilus66/Cnol-2025-2/internal/services/congress/storage"
)

// Coordinator creates exhibitors with their primary contact and registers
// stand staff with badge issuance.
type Coordinator struct {
	exposants    storage.ExposantStore
	inscriptions storage.InscriptionStore
	badges       badge.Issuer
	now          func() time.Time
	newID        func() (string, error)
}

// New creates a coordinator backed by the given stores and badge issuer.
func New(exposants storage.ExposantStore, inscriptions storage.InscriptionStore, badges badge.Issuer) *Coordinator {
	return &Coordinator{
		exposants:    exposants,
		inscriptions: inscriptions,
		badges:       badges,
		now:          time.Now,
		newID:        id.NewID,
	}
}

// CreateExposantInput carries the fields for exhibitor creation.
// RequestID is optional; retries carrying the same value are idempotent.
type CreateExposantInput struct {
	Nom       string
	Email     string
	RequestID string
}

// CreateExposant creates an exhibitor together with its implicitly-valid
// primary-contact inscription. Both rows are written in one transactional
// unit: they appear together or not at all.
func (c *Coordinator) CreateExposant(ctx context.Context, input CreateExposantInput) (storage.Exposant, error) {
	nom := strings.TrimSpace(input.Nom)
	email := strings.TrimSpace(input.Email)
	if nom == "" {
		return storage.Exposant{}, apperrors.WithMetadata(apperrors.CodeFieldRequired, "nom is required", map[string]string{"Field": "nom"})
	}
	if email == "" {
		return storage.Exposant{}, apperrors.WithMetadata(apperrors.CodeFieldRequired, "email is required", map[string]string{"Field": "email"})
	}

	exposantID, err := c.newID()
	if err != nil {
		return storage.Exposant{}, fmt.Errorf("generate exposant id: %w", err)
	}
	contactID, err := c.newID()
	if err != nil {
		return storage.Exposant{}, fmt.Errorf("generate contact id: %w", err)
	}

	now := c.now().UTC()
	exposant := storage.Exposant{
		ID:               exposantID,
		Nom:              nom,
		EmailResponsable: email,
		RequestID:        strings.TrimSpace(input.RequestID),
		CreatedAt:        now,
	}
	contact := storage.Inscription{
		ID:              contactID,
		Nom:             nom,
		Prenom:          "",
		Email:           email,
		ParticipantType: storage.ParticipantExposant,
		Organisation:    nom,
		ExposantID:      exposantID,
		Valide:          true,
		CreatedAt:       now,
	}

	created, err := c.exposants.CreateExposantWithContact(ctx, exposant, contact)
	if err != nil {
		return storage.Exposant{}, apperrors.Wrap(apperrors.CodeStoreFailure, "create exposant", err)
	}
	return created, nil
}

// AddStaffInput carries the fields for staff registration.
type AddStaffInput struct {
	Nom          string
	Prenom       string
	Email        string
	Telephone    string
	Fonction     string
	ExposantID   string
	Organisation string
}

// AddStaff registers a staff member for a stand and issues their badge.
// The staff row is written first; badge issuance failure surfaces as an
// operation error while the row stays in place.
func (c *Coordinator) AddStaff(ctx context.Context, input AddStaffInput) (storage.Inscription, error) {
	required := []struct {
		field string
		value string
	}{
		{"nom", input.Nom},
		{"prenom", input.Prenom},
		{"email", input.Email},
		{"fonction", input.Fonction},
	}
	for _, item := range required {
		if strings.TrimSpace(item.value) == "" {
			return storage.Inscription{}, apperrors.WithMetadata(apperrors.CodeFieldRequired, item.field+" is required", map[string]string{"Field": item.field})
		}
	}

	inscriptionID, err := c.newID()
	if err != nil {
		return storage.Inscription{}, fmt.Errorf("generate inscription id: %w", err)
	}

	staff := storage.Inscription{
		ID:              inscriptionID,
		Nom:             strings.TrimSpace(input.Nom),
		Prenom:          strings.TrimSpace(input.Prenom),
		Email:           strings.TrimSpace(input.Email),
		Telephone:       strings.TrimSpace(input.Telephone),
		Fonction:        strings.TrimSpace(input.Fonction),
		ParticipantType: storage.ParticipantStaff,
		Organisation:    input.Organisation,
		ExposantID:      strings.TrimSpace(input.ExposantID),
		Valide:          true,
		CreatedAt:       c.now().UTC(),
	}
	if err := c.inscriptions.PutInscription(ctx, staff); err != nil {
		return storage.Inscription{}, apperrors.Wrap(apperrors.CodeStoreFailure, "register staff", err)
	}

	identifiant, err := c.badges.Issue(ctx, badge.IssueRequest{
		InscriptionID: staff.ID,
		Nom:           staff.Nom,
		Prenom:        staff.Prenom,
		Email:         staff.Email,
		Fonction:      staff.Fonction,
		Organisation:  staff.Organisation,
	})
	if err != nil {
		return storage.Inscription{}, apperrors.Wrap(apperrors.CodeBadgeIssueFailure, "issue badge", err)
	}
	if err := c.inscriptions.SetBadgeIdentifier(ctx, staff.ID, identifiant); err != nil {
		return storage.Inscription{}, apperrors.Wrap(apperrors.CodeStoreFailure, "record badge identifier", err)
	}

	staff.IdentifiantBadge = identifiant
	return staff, nil
}
