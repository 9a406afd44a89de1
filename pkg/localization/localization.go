// Package localization translates stable message keys emitted by the domain
// layer into human readable text. The web client sends an optional "lang"
// query hint; Czech is the historical default of the application.
package localization

import "strings"

type Language string

const (
	LanguageCS Language = "cs"
	LanguageEN Language = "en"
)

// GetLanguage parses the "lang" query hint, falling back to Czech.
func GetLanguage(hint string) Language {
	switch strings.ToLower(hint) {
	case "en":
		return LanguageEN
	default:
		return LanguageCS
	}
}

var messages = map[Language]map[string]string{
	LanguageEN: {
		"error.unauthenticated":           "Authentication is required.",
		"error.unauthorized_actor":        "You are not allowed to perform this action.",
		"error.overlapping_entry":         "Another vacation or sick day already exists on this date.",
		"error.insufficient_balance":      "Not enough remaining vacation or overtime budget.",
		"error.lead_time_violated":        "The vacation date is too close to today.",
		"error.date_out_of_range":         "The requested date is outside the accepted window.",
		"error.illegal_status_transition": "This request cannot change to the requested state.",
		"error.negative_budget":           "Budgets must not be negative.",
		"error.lead_time_out_of_range":    "Notification lead time must be between 0 and 365 days.",
		"error.identity_incomplete":       "Your identity provider profile is missing a name or email.",
		"error.concurrent_modification":   "The record was modified concurrently, please try again.",
		"error.timeout":                   "The operation took too long and was cancelled.",
		"error.not_found":                 "The requested record does not exist.",
		"error.validation":                "The request is not valid.",
		"error.import_malformed":          "The imported spreadsheet has an unexpected layout.",
		"error.internal":                  "An unexpected error occurred.",
	},
	LanguageCS: {
		"error.unauthenticated":           "Je vyžadováno přihlášení.",
		"error.unauthorized_actor":        "K této akci nemáte oprávnění.",
		"error.overlapping_entry":         "Na tento den již existuje dovolená nebo sick day.",
		"error.insufficient_balance":      "Nedostatečný zůstatek dovolené nebo přesčasů.",
		"error.lead_time_violated":        "Datum dovolené je příliš blízko dnešku.",
		"error.date_out_of_range":         "Požadované datum je mimo povolené rozmezí.",
		"error.illegal_status_transition": "Žádost nelze převést do požadovaného stavu.",
		"error.negative_budget":           "Rozpočty nesmí být záporné.",
		"error.lead_time_out_of_range":    "Doba oznámení musí být mezi 0 a 365 dny.",
		"error.identity_incomplete":       "Profil od poskytovatele identity postrádá jméno nebo email.",
		"error.concurrent_modification":   "Záznam byl souběžně změněn, zkuste to prosím znovu.",
		"error.timeout":                   "Operace trvala příliš dlouho a byla zrušena.",
		"error.not_found":                 "Požadovaný záznam neexistuje.",
		"error.validation":                "Požadavek není platný.",
		"error.import_malformed":          "Importovaná tabulka má neočekávaný formát.",
		"error.internal":                  "Došlo k neočekávané chybě.",
	},
}

// Get returns the localized text for key, falling back to English and then
// to the key itself so a missing translation never hides the error.
func Get(lang Language, key string) string {
	if m, ok := messages[lang]; ok {
		if msg, ok := m[key]; ok {
			return msg
		}
	}
	if msg, ok := messages[LanguageEN][key]; ok {
		return msg
	}
	return key
}
