// Package i18n resolves request languages and localizes API messages.
//
// French is the canonical locale: message keys are the French strings the
// wire contract exposes, and English is registered as a translation on top.
package i18n

import (
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	// LangParam is the query parameter used to select a language.
	LangParam = "lang"
	// LangCookieName stores the caller's language preference.
	LangCookieName = "cnol_lang"
)

// Canonical message keys. Handlers emit these verbatim in the default locale.
const (
	MsgMethodNotAllowed = "Méthode non autorisée"
	MsgFieldsRequired   = "Champs requis manquants"
	MsgInternalError    = "Erreur interne du serveur"
	MsgExposantNotFound = "Exposant introuvable"
)

var supported = []language.Tag{
	language.French,
	language.English,
}

var matcher = language.NewMatcher(supported)

func init() {
	for key, translation := range map[string]string{
		MsgMethodNotAllowed: "Method not allowed",
		MsgFieldsRequired:   "Missing required fields",
		MsgInternalError:    "Internal server error",
		MsgExposantNotFound: "Exhibitor not found",
	} {
		message.SetString(language.French, key, key)
		message.SetString(language.English, key, translation)
	}
}

// Supported returns the list of supported language tags.
func Supported() []language.Tag {
	out := make([]language.Tag, len(supported))
	copy(out, supported)
	return out
}

// Default returns the default language tag.
func Default() language.Tag {
	return language.French
}

// Printer returns a message printer for the supplied tag.
func Printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag)
}

// ResolveTag determines the best language tag for the request.
// The bool indicates whether the lang query param should be persisted as a cookie.
func ResolveTag(r *http.Request) (language.Tag, bool) {
	if r == nil {
		return Default(), false
	}

	if langValue := strings.TrimSpace(r.URL.Query().Get(LangParam)); langValue != "" {
		if tag, ok := parseTag(langValue); ok {
			return tag, true
		}
	}

	if cookie, err := r.Cookie(LangCookieName); err == nil {
		if tag, ok := parseTag(cookie.Value); ok {
			return tag, false
		}
	}

	if accept := strings.TrimSpace(r.Header.Get("Accept-Language")); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil {
			_, index, _ := matcher.Match(tags...)
			return supported[index], false
		}
	}

	return Default(), false
}

// SetLanguageCookie persists the selected language on the response.
func SetLanguageCookie(w http.ResponseWriter, tag language.Tag) {
	if w == nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     LangCookieName,
		Value:    tag.String(),
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		SameSite: http.SameSiteLaxMode,
	})
}

func parseTag(value string) (language.Tag, bool) {
	parsed, err := language.Parse(strings.TrimSpace(value))
	if err != nil {
		return language.Tag{}, false
	}
	_, index, confidence := matcher.Match(parsed)
	if confidence == language.No {
		return language.Tag{}, false
	}
	return supported[index], true
}
