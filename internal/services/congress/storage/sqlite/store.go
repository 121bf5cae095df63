// Package sqlite provides a SQLite-backed congress storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilus66/Cnol-2025-2/internal/platform/storage/sqlitemigrate"
	"github.com/ilus66/Cnol-2025-2/internal/services/congress/storage"
	"github.com/ilus66/Cnol-2025-2/internal/services/congress/storage/sqlite/migrations"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Store persists congress registration state in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite congress store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// CreateExposantWithContact inserts an exposant and its primary-contact
// inscription inside one transaction so partial writes never become visible.
// A replay carrying an already-recorded request id returns the original
// exposant without writing.
func (s *Store) CreateExposantWithContact(ctx context.Context, exposant storage.Exposant, contact storage.Inscription) (storage.Exposant, error) {
	if err := ctx.Err(); err != nil {
		return storage.Exposant{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Exposant{}, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(exposant.ID) == "" {
		return storage.Exposant{}, fmt.Errorf("exposant id is required")
	}
	if strings.TrimSpace(exposant.Nom) == "" {
		return storage.Exposant{}, fmt.Errorf("exposant nom is required")
	}
	if strings.TrimSpace(contact.ID) == "" {
		return storage.Exposant{}, fmt.Errorf("contact inscription id is required")
	}

	requestID := strings.TrimSpace(exposant.RequestID)
	if requestID != "" {
		existing, err := s.getExposantByRequestID(ctx, requestID)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return storage.Exposant{}, err
		}
	}

	createdAt := exposant.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	contactCreatedAt := contact.CreatedAt.UTC()
	if contactCreatedAt.IsZero() {
		contactCreatedAt = createdAt
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return storage.Exposant{}, fmt.Errorf("begin create exposant: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO exposants (id, nom, email_responsable, request_id, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		exposant.ID,
		exposant.Nom,
		exposant.EmailResponsable,
		requestID,
		toMillis(createdAt),
	)
	if err != nil {
		if isUniqueViolation(err) && requestID != "" {
			// Lost a race with a concurrent retry of the same request.
			return s.getExposantByRequestID(ctx, requestID)
		}
		return storage.Exposant{}, fmt.Errorf("create exposant: %w", err)
	}

	if err := insertInscription(ctx, tx, contact, contactCreatedAt); err != nil {
		return storage.Exposant{}, fmt.Errorf("create exposant contact: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return storage.Exposant{}, fmt.Errorf("commit create exposant: %w", err)
	}

	exposant.RequestID = requestID
	exposant.CreatedAt = createdAt
	return exposant, nil
}

// GetExposant returns one exposant by id.
func (s *Store) GetExposant(ctx context.Context, exposantID string) (storage.Exposant, error) {
	if err := ctx.Err(); err != nil {
		return storage.Exposant{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Exposant{}, fmt.Errorf("storage is not configured")
	}
	exposantID = strings.TrimSpace(exposantID)
	if exposantID == "" {
		return storage.Exposant{}, fmt.Errorf("exposant id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, nom, email_responsable, request_id, created_at
		   FROM exposants
		  WHERE id = ?`,
		exposantID,
	)
	return scanExposant(row)
}

// ListExposants returns all exposants ordered by nom ascending.
func (s *Store) ListExposants(ctx context.Context) ([]storage.Exposant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, nom, email_responsable, request_id, created_at
		   FROM exposants
		  ORDER BY nom ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list exposants: %w", err)
	}
	defer rows.Close()

	exposants := make([]storage.Exposant, 0)
	for rows.Next() {
		var exposant storage.Exposant
		var createdAt int64
		if err := rows.Scan(
			&exposant.ID,
			&exposant.Nom,
			&exposant.EmailResponsable,
			&exposant.RequestID,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("list exposants: %w", err)
		}
		exposant.CreatedAt = fromMillis(createdAt)
		exposants = append(exposants, exposant)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list exposants: %w", err)
	}
	return exposants, nil
}

// PutInscription inserts one inscription record.
func (s *Store) PutInscription(ctx context.Context, inscription storage.Inscription) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(inscription.ID) == "" {
		return fmt.Errorf("inscription id is required")
	}

	createdAt := inscription.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	if err := insertInscription(ctx, s.sqlDB, inscription, createdAt); err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("put inscription: %w", err)
	}
	return nil
}

// GetInscription returns one inscription by id.
func (s *Store) GetInscription(ctx context.Context, inscriptionID string) (storage.Inscription, error) {
	if err := ctx.Err(); err != nil {
		return storage.Inscription{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Inscription{}, fmt.Errorf("storage is not configured")
	}
	inscriptionID = strings.TrimSpace(inscriptionID)
	if inscriptionID == "" {
		return storage.Inscription{}, fmt.Errorf("inscription id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, nom, prenom, email, telephone, fonction,
		        participant_type, organisation, exposant_id,
		        valide, identifiant_badge, created_at
		   FROM inscription
		  WHERE id = ?`,
		inscriptionID,
	)
	return scanInscription(row)
}

// SetBadgeIdentifier records the issued badge identifier on an inscription.
func (s *Store) SetBadgeIdentifier(ctx context.Context, inscriptionID string, identifiantBadge string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	inscriptionID = strings.TrimSpace(inscriptionID)
	if inscriptionID == "" {
		return fmt.Errorf("inscription id is required")
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		`UPDATE inscription SET identifiant_badge = ? WHERE id = ?`,
		identifiantBadge,
		inscriptionID,
	)
	if err != nil {
		return fmt.Errorf("set badge identifier: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set badge identifier: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListStaffByOrganisation returns all staff inscriptions whose organisation
// matches exactly. The match is case-sensitive; the exposant_id column plays
// no part in this query.
func (s *Store) ListStaffByOrganisation(ctx context.Context, organisation string) ([]storage.Inscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, nom, prenom, email, telephone, fonction,
		        participant_type, organisation, exposant_id,
		        valide, identifiant_badge, created_at
		   FROM inscription
		  WHERE participant_type = ? AND organisation = ?`,
		storage.ParticipantStaff,
		organisation,
	)
	if err != nil {
		return nil, fmt.Errorf("list staff: %w", err)
	}
	defer rows.Close()

	staff := make([]storage.Inscription, 0)
	for rows.Next() {
		inscription, err := scanInscriptionRows(rows)
		if err != nil {
			return nil, fmt.Errorf("list staff: %w", err)
		}
		staff = append(staff, inscription)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list staff: %w", err)
	}
	return staff, nil
}

// GetContactForExposant returns the primary-contact inscription of an
// exposant: the one created alongside it with the exposant participant type.
func (s *Store) GetContactForExposant(ctx context.Context, exposantID string) (storage.Inscription, error) {
	if err := ctx.Err(); err != nil {
		return storage.Inscription{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Inscription{}, fmt.Errorf("storage is not configured")
	}
	exposantID = strings.TrimSpace(exposantID)
	if exposantID == "" {
		return storage.Inscription{}, fmt.Errorf("exposant id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, nom, prenom, email, telephone, fonction,
		        participant_type, organisation, exposant_id,
		        valide, identifiant_badge, created_at
		   FROM inscription
		  WHERE participant_type = ? AND exposant_id = ?
		  ORDER BY created_at ASC
		  LIMIT 1`,
		storage.ParticipantExposant,
		exposantID,
	)
	return scanInscription(row)
}

func (s *Store) getExposantByRequestID(ctx context.Context, requestID string) (storage.Exposant, error) {
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, nom, email_responsable, request_id, created_at
		   FROM exposants
		  WHERE request_id = ?`,
		requestID,
	)
	return scanExposant(row)
}

// execer covers both *sql.DB and *sql.Tx for inscription inserts.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertInscription(ctx context.Context, db execer, inscription storage.Inscription, createdAt time.Time) error {
	valide := 0
	if inscription.Valide {
		valide = 1
	}
	_, err := db.ExecContext(
		ctx,
		`INSERT INTO inscription (
		   id, nom, prenom, email, telephone, fonction,
		   participant_type, organisation, exposant_id,
		   valide, identifiant_badge, created_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inscription.ID,
		inscription.Nom,
		inscription.Prenom,
		inscription.Email,
		inscription.Telephone,
		inscription.Fonction,
		inscription.ParticipantType,
		inscription.Organisation,
		inscription.ExposantID,
		valide,
		inscription.IdentifiantBadge,
		toMillis(createdAt),
	)
	return err
}

func scanExposant(row *sql.Row) (storage.Exposant, error) {
	var exposant storage.Exposant
	var createdAt int64
	err := row.Scan(
		&exposant.ID,
		&exposant.Nom,
		&exposant.EmailResponsable,
		&exposant.RequestID,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Exposant{}, storage.ErrNotFound
		}
		return storage.Exposant{}, fmt.Errorf("get exposant: %w", err)
	}
	exposant.CreatedAt = fromMillis(createdAt)
	return exposant, nil
}

func scanInscription(row *sql.Row) (storage.Inscription, error) {
	var inscription storage.Inscription
	var valide int
	var createdAt int64
	err := row.Scan(
		&inscription.ID,
		&inscription.Nom,
		&inscription.Prenom,
		&inscription.Email,
		&inscription.Telephone,
		&inscription.Fonction,
		&inscription.ParticipantType,
		&inscription.Organisation,
		&inscription.ExposantID,
		&valide,
		&inscription.IdentifiantBadge,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Inscription{}, storage.ErrNotFound
		}
		return storage.Inscription{}, fmt.Errorf("get inscription: %w", err)
	}
	inscription.Valide = valide != 0
	inscription.CreatedAt = fromMillis(createdAt)
	return inscription, nil
}

func scanInscriptionRows(rows *sql.Rows) (storage.Inscription, error) {
	var inscription storage.Inscription
	var valide int
	var createdAt int64
	err := rows.Scan(
		&inscription.ID,
		&inscription.Nom,
		&inscription.Prenom,
		&inscription.Email,
		&inscription.Telephone,
		&inscription.Fonction,
		&inscription.ParticipantType,
		&inscription.Organisation,
		&inscription.ExposantID,
		&valide,
		&inscription.IdentifiantBadge,
		&createdAt,
	)
	if err != nil {
		return storage.Inscription{}, err
	}
	inscription.Valide = valide != 0
	inscription.CreatedAt = fromMillis(createdAt)
	return inscription, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "unique constraint failed")
}

var _ storage.ExposantStore = (*Store)(nil)
var _ storage.InscriptionStore = (*Store)(nil)
