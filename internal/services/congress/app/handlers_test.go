package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ilus66/Cnol-2025-2/internal/services/congress/badge"
	"github.com/ilus66/Cnol-2025-2/internal/services/congress/directory"
	"github.com/ilus66/Cnol-2025-2/internal/services/congress/gate"
	"github.com/ilus66/Cnol-2025-2/internal/services/congress/registration"
	"github.com/ilus66/Cnol-2025-2/internal/services/congress/session"
	congresssqlite "github.com/ilus66/Cnol-2025-2/internal/services/congress/storage/sqlite"
)

type testEnv struct {
	mux   *http.ServeMux
	store *congresssqlite.Store
	codec *session.Codec
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store, err := congresssqlite.Open(filepath.Join(t.TempDir(), "congress.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	codec, err := session.NewCodec([]byte("test-secret"), time.Hour, nil)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}

	h := newHandler(
		registration.New(store, store, badge.LocalIssuer{}),
		directory.New(store, store),
		gate.New(codec, store, store),
	)
	return &testEnv{mux: h.routes(), store: store, codec: codec}
}

func (e *testEnv) do(t *testing.T, method, target, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	for _, cookie := range cookies {
		r.AddCookie(cookie)
	}
	recorder := httptest.NewRecorder()
	e.mux.ServeHTTP(recorder, r)
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.NewDecoder(recorder.Body).Decode(target); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func (e *testEnv) sessionCookie(t *testing.T, registrantID, participantType string) *http.Cookie {
	t.Helper()
	token, err := e.codec.Issue(session.Identity{RegistrantID: registrantID, ParticipantType: participantType})
	if err != nil {
		t.Fatalf("issue session: %v", err)
	}
	return &http.Cookie{Name: session.CookieName, Value: token}
}

func TestCreateExposantRejectsNonPost(t *testing.T) {
	env := newTestEnv(t)

	recorder := env.do(t, http.MethodGet, "/api/admin/create-exposant", "")
	if recorder.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", recorder.Code)
	}
	var body map[string]string
	decodeBody(t, recorder, &body)
	if body["error"] != "Méthode non autorisée" {
		t.Fatalf("error = %q", body["error"])
	}
}

func TestCreateExposantRejectsMissingFields(t *testing.T) {
	env := newTestEnv(t)

	for _, payload := range []string{
		`{}`,
		`{"nom":"Acme"}`,
		`{"email":"a@acme.test"}`,
		`{"nom":"  ","email":"a@acme.test"}`,
	} {
		recorder := env.do(t, http.MethodPost, "/api/admin/create-exposant", payload)
		if recorder.Code != http.StatusBadRequest {
			t.Fatalf("payload %s: status = %d, want 400", payload, recorder.Code)
		}
		var body map[string]string
		decodeBody(t, recorder, &body)
		if body["error"] != "Champs requis manquants" {
			t.Fatalf("payload %s: error = %q", payload, body["error"])
		}
	}
}

func TestCreateExposantLocalizesErrorsInEnglish(t *testing.T) {
	env := newTestEnv(t)

	recorder := env.do(t, http.MethodGet, "/api/admin/create-exposant?lang=en", "")
	var body map[string]string
	decodeBody(t, recorder, &body)
	if body["error"] != "Method not allowed" {
		t.Fatalf("error = %q", body["error"])
	}
}

func TestCreateAndListExposants(t *testing.T) {
	env := newTestEnv(t)

	for _, nom := range []string{"Zenith", "Acme"} {
		recorder := env.do(t, http.MethodPost, "/api/admin/create-exposant",
			`{"nom":"`+nom+`","email":"contact@`+strings.ToLower(nom)+`.test"}`)
		if recorder.Code != http.StatusOK {
			t.Fatalf("create %s: status = %d, body %s", nom, recorder.Code, recorder.Body.String())
		}
		var body map[string]any
		decodeBody(t, recorder, &body)
		if body["success"] != true {
			t.Fatalf("create %s: body = %v", nom, body)
		}
	}

	recorder := env.do(t, http.MethodGet, "/api/admin/list-exposants", "")
	if recorder.Code != http.StatusOK {
		t.Fatalf("list: status = %d", recorder.Code)
	}
	var listing struct {
		Exposants []exposantPayload `json:"exposants"`
	}
	decodeBody(t, recorder, &listing)
	if len(listing.Exposants) != 2 {
		t.Fatalf("exposants len = %d, want 2", len(listing.Exposants))
	}
	if listing.Exposants[0].Nom != "Acme" || listing.Exposants[1].Nom != "Zenith" {
		t.Fatalf("order = %q, %q; want name order", listing.Exposants[0].Nom, listing.Exposants[1].Nom)
	}
}

func TestAddStaffReturnsBadgeIdentifier(t *testing.T) {
	env := newTestEnv(t)

	recorder := env.do(t, http.MethodPost, "/api/admin/add-staff",
		`{"nom":"Dupont","prenom":"Jean","email":"j@acme.test","fonction":"Manager","exposant_id":"expo-1","organisation":"Acme"}`)
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", recorder.Code, recorder.Body.String())
	}
	var body map[string]any
	decodeBody(t, recorder, &body)
	if body["success"] != true {
		t.Fatalf("body = %v", body)
	}
	identifiant, _ := body["identifiant_badge"].(string)
	if identifiant == "" {
		t.Fatalf("identifiant_badge missing in %v", body)
	}
}

func TestAddStaffRejectsMissingFunction(t *testing.T) {
	env := newTestEnv(t)

	recorder := env.do(t, http.MethodPost, "/api/admin/add-staff",
		`{"nom":"Dupont","prenom":"Jean","email":"j@acme.test","organisation":"Acme"}`)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", recorder.Code)
	}
	var body map[string]string
	decodeBody(t, recorder, &body)
	if body["error"] != "Champs requis manquants" {
		t.Fatalf("error = %q", body["error"])
	}
}

func TestMonStandRedirectsWithoutSession(t *testing.T) {
	env := newTestEnv(t)

	recorder := env.do(t, http.MethodGet, "/mon-stand", "")
	if recorder.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", recorder.Code)
	}
	if location := recorder.Header().Get("Location"); location != gate.IdentificationPath {
		t.Fatalf("location = %q, want %q", location, gate.IdentificationPath)
	}
}

func TestMonStandRedirectsStaffSession(t *testing.T) {
	env := newTestEnv(t)

	recorder := env.do(t, http.MethodGet, "/mon-stand", "", env.sessionCookie(t, "insc-1", "staff"))
	if recorder.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", recorder.Code)
	}
	if location := recorder.Header().Get("Location"); location != gate.EspacePath {
		t.Fatalf("location = %q, want %q", location, gate.EspacePath)
	}
}

// TestStandAdministrationScenario walks the full flow: an exhibitor is
// registered with its contact, staff join the stand, and the contact's
// session sees the stand context plus the roster keyed by organisation name.
func TestStandAdministrationScenario(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	recorder := env.do(t, http.MethodPost, "/api/admin/create-exposant",
		`{"nom":"Acme","email":"contact@acme.test"}`)
	if recorder.Code != http.StatusOK {
		t.Fatalf("create exposant: status = %d", recorder.Code)
	}

	var listing struct {
		Exposants []exposantPayload `json:"exposants"`
	}
	decodeBody(t, env.do(t, http.MethodGet, "/api/admin/list-exposants", ""), &listing)
	if len(listing.Exposants) != 1 {
		t.Fatalf("exposants len = %d, want 1", len(listing.Exposants))
	}
	exposantID := listing.Exposants[0].ID

	for _, staff := range []string{
		`{"nom":"Dupont","prenom":"Jean","email":"j@acme.test","fonction":"Manager","exposant_id":"` + exposantID + `","organisation":"Acme"}`,
		`{"nom":"Martin","prenom":"Lea","email":"l@acme.test","fonction":"Sales","exposant_id":"` + exposantID + `","organisation":"Acme"}`,
		`{"nom":"Lemoine","prenom":"Paul","email":"p@other.test","fonction":"Sales","exposant_id":"` + exposantID + `","organisation":"acme"}`,
	} {
		if code := env.do(t, http.MethodPost, "/api/admin/add-staff", staff).Code; code != http.StatusOK {
			t.Fatalf("add staff: status = %d", code)
		}
	}

	contactID := findContactID(ctx, t, env, exposantID)
	cookie := env.sessionCookie(t, contactID, "exposant")

	recorder = env.do(t, http.MethodGet, "/mon-stand", "", cookie)
	if recorder.Code != http.StatusOK {
		t.Fatalf("mon-stand: status = %d", recorder.Code)
	}
	var stand struct {
		Exposant *exposantPayload `json:"exposant"`
	}
	decodeBody(t, recorder, &stand)
	if stand.Exposant == nil || stand.Exposant.Nom != "Acme" {
		t.Fatalf("stand context = %+v, want Acme", stand.Exposant)
	}

	recorder = env.do(t, http.MethodGet, "/api/mon-stand/staff", "", cookie)
	if recorder.Code != http.StatusOK {
		t.Fatalf("staff roster: status = %d", recorder.Code)
	}
	var roster struct {
		Staff []inscriptionPayload `json:"staff"`
	}
	decodeBody(t, recorder, &roster)
	if len(roster.Staff) != 2 {
		t.Fatalf("roster len = %d, want 2 (organisation join is exact)", len(roster.Staff))
	}
	for _, member := range roster.Staff {
		if member.Organisation != "Acme" {
			t.Fatalf("unexpected roster member %+v", member)
		}
	}
}

func TestMonStandDegradesOnBrokenLink(t *testing.T) {
	env := newTestEnv(t)

	// A staff inscription flipped to an exposant session without a stand link.
	recorder := env.do(t, http.MethodPost, "/api/admin/add-staff",
		`{"nom":"Dupont","prenom":"Jean","email":"j@acme.test","fonction":"Manager","organisation":"Acme"}`)
	if recorder.Code != http.StatusOK {
		t.Fatalf("add staff: status = %d", recorder.Code)
	}

	cookie := env.sessionCookie(t, "ghost-registrant", "exposant")
	recorder = env.do(t, http.MethodGet, "/mon-stand", "", cookie)
	if recorder.Code != http.StatusOK {
		t.Fatalf("mon-stand: status = %d, want 200", recorder.Code)
	}
	var stand struct {
		Exposant *exposantPayload `json:"exposant"`
	}
	decodeBody(t, recorder, &stand)
	if stand.Exposant != nil {
		t.Fatalf("stand context = %+v, want null", stand.Exposant)
	}

	recorder = env.do(t, http.MethodGet, "/api/mon-stand/staff", "", cookie)
	if recorder.Code != http.StatusOK {
		t.Fatalf("staff roster: status = %d, want 200", recorder.Code)
	}
	var roster struct {
		Staff []inscriptionPayload `json:"staff"`
	}
	decodeBody(t, recorder, &roster)
	if len(roster.Staff) != 0 {
		t.Fatalf("roster = %+v, want empty", roster.Staff)
	}
}

func findContactID(ctx context.Context, t *testing.T, env *testEnv, exposantID string) string {
	t.Helper()
	contact, err := env.store.GetContactForExposant(ctx, exposantID)
	if err != nil {
		t.Fatalf("get contact: %v", err)
	}
	return contact.ID
}
