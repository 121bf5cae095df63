package server

import (
	"encoding/json"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/message"

	apperrors "github.com/ilus66/Cnol-2025-2/internal/platform/errors"
	"github.com/ilus66/Cnol-2025-2/internal/services/congress/directory"
	"github.com/ilus66/Cnol-2025-2/internal/services/congress/gate"
	"github.com/ilus66/Cnol-2025-2/internal/services/congress/i18n"
	"github.com/ilus66/Cnol-2025-2/internal/services/congress/registration"
	"github.com/ilus66/Cnol-2025-2/internal/services/congress/storage"
)

// handler serves the congress JSON endpoints.
type handler struct {
	registrations *registration.Coordinator
	listings      *directory.Service
	gate          *gate.Gate
	tracer        trace.Tracer
}

func newHandler(registrations *registration.Coordinator, listings *directory.Service, g *gate.Gate) *handler {
	return &handler{
		registrations: registrations,
		listings:      listings,
		gate:          g,
		tracer:        otel.Tracer("congress"),
	}
}

func (h *handler) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/admin/create-exposant", h.handleCreateExposant)
	mux.HandleFunc("/api/admin/list-exposants", h.handleListExposants)
	mux.HandleFunc("/api/admin/add-staff", h.handleAddStaff)
	mux.Handle("/mon-stand", h.gate.RequireExposant(http.HandlerFunc(h.handleMonStand)))
	mux.Handle("/api/mon-stand/staff", h.gate.RequireExposant(http.HandlerFunc(h.handleMonStandStaff)))
	return mux
}

type exposantPayload struct {
	ID               string `json:"id"`
	Nom              string `json:"nom"`
	EmailResponsable string `json:"email_responsable"`
}

type inscriptionPayload struct {
	ID               string `json:"id"`
	Nom              string `json:"nom"`
	Prenom           string `json:"prenom"`
	Email            string `json:"email"`
	Telephone        string `json:"telephone"`
	Fonction         string `json:"fonction"`
	ParticipantType  string `json:"participant_type"`
	Organisation     string `json:"organisation"`
	ExposantID       string `json:"exposant_id"`
	Valide           bool   `json:"valide"`
	IdentifiantBadge string `json:"identifiant_badge"`
}

func toExposantPayload(exposant storage.Exposant) exposantPayload {
	return exposantPayload{
		ID:               exposant.ID,
		Nom:              exposant.Nom,
		EmailResponsable: exposant.EmailResponsable,
	}
}

func toInscriptionPayload(inscription storage.Inscription) inscriptionPayload {
	return inscriptionPayload{
		ID:               inscription.ID,
		Nom:              inscription.Nom,
		Prenom:           inscription.Prenom,
		Email:            inscription.Email,
		Telephone:        inscription.Telephone,
		Fonction:         inscription.Fonction,
		ParticipantType:  inscription.ParticipantType,
		Organisation:     inscription.Organisation,
		ExposantID:       inscription.ExposantID,
		Valide:           inscription.Valide,
		IdentifiantBadge: inscription.IdentifiantBadge,
	}
}

type createExposantRequest struct {
	Nom       string `json:"nom"`
	Email     string `json:"email"`
	RequestID string `json:"request_id"`
}

func (h *handler) handleCreateExposant(w http.ResponseWriter, r *http.Request) {
	printer := h.localize(w, r)
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, printer.Sprintf(i18n.MsgMethodNotAllowed))
		return
	}

	var req createExposantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, printer.Sprintf(i18n.MsgFieldsRequired))
		return
	}

	ctx, span := h.tracer.Start(r.Context(), "registration.CreateExposant")
	defer span.End()

	_, err := h.registrations.CreateExposant(ctx, registration.CreateExposantInput{
		Nom:       req.Nom,
		Email:     req.Email,
		RequestID: req.RequestID,
	})
	if err != nil {
		span.RecordError(err)
		h.writeDomainError(w, printer, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *handler) handleListExposants(w http.ResponseWriter, r *http.Request) {
	printer := h.localize(w, r)

	ctx, span := h.tracer.Start(r.Context(), "directory.ListExposants")
	defer span.End()

	exposants, err := h.listings.ListExposants(ctx)
	if err != nil {
		span.RecordError(err)
		h.writeDomainError(w, printer, err)
		return
	}
	payloads := make([]exposantPayload, 0, len(exposants))
	for _, exposant := range exposants {
		payloads = append(payloads, toExposantPayload(exposant))
	}
	writeJSON(w, http.StatusOK, map[string]any{"exposants": payloads})
}

type addStaffRequest struct {
	Nom          string `json:"nom"`
	Prenom       string `json:"prenom"`
	Email        string `json:"email"`
	Telephone    string `json:"telephone"`
	Fonction     string `json:"fonction"`
	ExposantID   string `json:"exposant_id"`
	Organisation string `json:"organisation"`
}

func (h *handler) handleAddStaff(w http.ResponseWriter, r *http.Request) {
	printer := h.localize(w, r)
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, printer.Sprintf(i18n.MsgMethodNotAllowed))
		return
	}

	var req addStaffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, printer.Sprintf(i18n.MsgFieldsRequired))
		return
	}

	ctx, span := h.tracer.Start(r.Context(), "registration.AddStaff")
	defer span.End()

	staff, err := h.registrations.AddStaff(ctx, registration.AddStaffInput{
		Nom:          req.Nom,
		Prenom:       req.Prenom,
		Email:        req.Email,
		Telephone:    req.Telephone,
		Fonction:     req.Fonction,
		ExposantID:   req.ExposantID,
		Organisation: req.Organisation,
	})
	if err != nil {
		span.RecordError(err)
		h.writeDomainError(w, printer, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":           true,
		"identifiant_badge": staff.IdentifiantBadge,
	})
}

// handleMonStand serves the stand context the gate resolved. A nil context
// still answers 200: the caller is an authenticated exposant whose stand link
// did not resolve.
func (h *handler) handleMonStand(w http.ResponseWriter, r *http.Request) {
	exposant := gate.ExposantFromContext(r.Context())
	var payload *exposantPayload
	if exposant != nil {
		converted := toExposantPayload(*exposant)
		payload = &converted
	}
	writeJSON(w, http.StatusOK, map[string]any{"exposant": payload})
}

func (h *handler) handleMonStandStaff(w http.ResponseWriter, r *http.Request) {
	printer := h.localize(w, r)
	exposant := gate.ExposantFromContext(r.Context())
	payloads := []inscriptionPayload{}
	if exposant != nil {
		ctx, span := h.tracer.Start(r.Context(), "directory.ListStaffForExposant")
		defer span.End()

		staff, err := h.listings.ListStaffForExposant(ctx, exposant.ID)
		if err != nil {
			span.RecordError(err)
			h.writeDomainError(w, printer, err)
			return
		}
		for _, member := range staff {
			payloads = append(payloads, toInscriptionPayload(member))
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"staff": payloads})
}

// localize negotiates the response language and persists an explicit
// query-parameter selection as a cookie.
func (h *handler) localize(w http.ResponseWriter, r *http.Request) *message.Printer {
	tag, persist := i18n.ResolveTag(r)
	if persist {
		i18n.SetLanguageCookie(w, tag)
	}
	return i18n.Printer(tag)
}

// writeDomainError maps a domain error to its HTTP response. Store and badge
// failures surface their message verbatim so the caller can act on it; the
// other outcomes answer with the localized canonical strings.
func (h *handler) writeDomainError(w http.ResponseWriter, printer *message.Printer, err error) {
	code := apperrors.CodeOf(err)
	switch code {
	case apperrors.CodeStoreFailure, apperrors.CodeBadgeIssueFailure:
		writeJSONError(w, code.HTTPStatus(), err.Error())
	default:
		writeJSONError(w, code.HTTPStatus(), printer.Sprintf(messageForCode(code)))
	}
}

func messageForCode(code apperrors.Code) string {
	switch code {
	case apperrors.CodeFieldRequired:
		return i18n.MsgFieldsRequired
	case apperrors.CodeMethodNotAllowed:
		return i18n.MsgMethodNotAllowed
	case apperrors.CodeExposantNotFound:
		return i18n.MsgExposantNotFound
	default:
		return i18n.MsgInternalError
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	_ = encoder.Encode(payload)
}

func writeJSONError(w http.ResponseWriter, status int, errorMessage string) {
	writeJSON(w, status, map[string]string{"error": errorMessage})
}
