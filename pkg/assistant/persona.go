package assistant

import (
	"fmt"
	"strings"
)

// Language is one of the supported Guyanese indigenous languages.
type Language string

const (
	Lokono    Language = "Lokono"
	Makushi   Language = "Makushi"
	Wapishana Language = "Wapishana"
	Akawaio   Language = "Akawaio"
	Warrau    Language = "Warrau"
	Carib     Language = "Carib"
)

// Languages returns the supported languages in display order.
func Languages() []Language {
	return []Language{Lokono, Makushi, Wapishana, Akawaio, Warrau, Carib}
}

// ParseLanguage matches a user-supplied name case-insensitively.
func ParseLanguage(name string) (Language, error) {
	for _, lang := range Languages() {
		if strings.EqualFold(name, string(lang)) {
			return lang, nil
		}
	}
	return "", fmt.Errorf("unsupported language %q (supported: %s)", name, languageNames())
}

func languageNames() string {
	names := make([]string, 0, len(Languages()))
	for _, lang := range Languages() {
		names = append(names, string(lang))
	}
	return strings.Join(names, ", ")
}

// SystemInstruction builds the tutor persona for a language. The same
// instruction drives both the live conversation and the single-shot
// question flow so answers stay consistent across modes.
func SystemInstruction(lang Language) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a warm, patient teacher of %s, an indigenous language of Guyana. ", lang)
	b.WriteString("Help the learner practice through conversation: respond briefly in ")
	fmt.Fprintf(&b, "%s with an English translation, correct mistakes gently, ", lang)
	b.WriteString("and share cultural context about the communities who speak the language when it is relevant. ")
	b.WriteString("Keep answers short enough to speak aloud. ")
	b.WriteString("If you are not certain a word or phrase is authentic, say so rather than inventing one.")
	return b.String()
}
