// Package storage defines persistence contracts for congress registration state.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness-constrained record already exists.
var ErrAlreadyExists = errors.New("record already exists")

// Participant types carried on inscription records.
const (
	ParticipantExposant = "exposant"
	ParticipantStaff    = "staff"
)

// Exposant stores one exhibitor ("stand") record.
type Exposant struct {
	ID               string
	Nom              string
	EmailResponsable string
	RequestID        string
	CreatedAt        time.Time
}

// Inscription stores one event registrant of any participant type.
//
// ExposantID is set on the stand's primary contact and on staff records;
// Organisation carries the stand's company name and is the join key the staff
// listing relies on. IdentifiantBadge is assigned after badge issuance.
type Inscription struct {
	ID               string
	Nom              string
	Prenom           string
	Email            string
	Telephone        string
	Fonction         string
	ParticipantType  string
	Organisation     string
	ExposantID       string
	Valide           bool
	IdentifiantBadge string
	CreatedAt        time.Time
}

// ExposantStore persists exhibitor records.
type ExposantStore interface {
	// CreateExposantWithContact inserts the exposant and its primary-contact
	// inscription in a single transaction. When the exposant carries a request
	// id that was already recorded, the original exposant is returned and
	// nothing is written.
	CreateExposantWithContact(ctx context.Context, exposant Exposant, contact Inscription) (Exposant, error)
	GetExposant(ctx context.Context, exposantID string) (Exposant, error)
	ListExposants(ctx context.Context) ([]Exposant, error)
}

// InscriptionStore persists registrant records.
type InscriptionStore interface {
	PutInscription(ctx context.Context, inscription Inscription) error
	GetInscription(ctx context.Context, inscriptionID string) (Inscription, error)
	SetBadgeIdentifier(ctx context.Context, inscriptionID string, identifiantBadge string) error
	ListStaffByOrganisation(ctx context.Context, organisation string) ([]Inscription, error)
}
