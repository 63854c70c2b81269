package pipeline

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/siherrmann/nerval/model"
)

// ContextEnricher finds organization, city, country and role hints in the
// text surrounding a mention
type ContextEnricher struct {
	Window               int
	OrganizationPatterns []*regexp.Regexp
	Cities               []string
	Countries            []string
	RolePatterns         []*regexp.Regexp
}

// NewContextEnricher creates an enricher with the default corpus lists.
// window is the number of characters taken on each side of the mention.
func NewContextEnricher(window int) *ContextEnricher {
	return &ContextEnricher{
		Window: window,
		OrganizationPatterns: compileAll(
			`Commission [^,.]+`,
			`Institut [^,.]+`,
			`Université [^,.]+`,
			`Laboratoire [^,.]+`,
			`Chambre [^,.]+`,
			`Assemblée [^,.]+`,
			`Société [^,.]+`,
			`Comité [^,.]+`,
		),
		Cities: []string{
			"Paris", "Genève", "Rome", "Madrid", "Oxford", "Bruxelles",
			"Rio de Janeiro", "Berne", "Berlin", "Londres", "Christiania",
			"Baden-Baden", "California",
		},
		Countries: []string{
			"France", "Suisse", "Italie", "Espagne", "Angleterre",
			"Brésil", "Belgique", "Allemagne", "Danemark", "Norvège",
			"États-Unis", "U.S.A.", "Royaume-Uni",
		},
		// matched against the lowercased context
		RolePatterns: compileAll(
			`présidente?\s+de\s+[^,.]+`,
			`déléguée?\s+de\s+[^,.]+`,
			`membre\s+de\s+[^,.]+`,
			`rapporteur\s+de\s+[^,.]+`,
			`directeur\s+de\s+[^,.]+`,
			`représentante?\s+de\s+[^,.]+`,
		),
	}
}

func compileAll(patterns ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		compiled[i] = regexp.MustCompile(p)
	}
	return compiled
}

// Context returns up to Window characters on each side of the first
// case-insensitive occurrence of mention in text, or "" if it doesn't occur.
func (e *ContextEnricher) Context(mention string, text string) string {
	mention = strings.TrimSpace(mention)
	if mention == "" {
		return ""
	}
	lowerText := strings.ToLower(text)
	pos := strings.Index(lowerText, strings.ToLower(mention))
	if pos < 0 {
		return ""
	}

	runes := []rune(text)
	start := utf8.RuneCountInString(lowerText[:pos])
	end := start + utf8.RuneCountInString(mention)
	return string(runes[max(0, start-e.Window):min(len(runes), end+e.Window)])
}

// Enrich extracts the enrichment fields from the context of mention in text
func (e *ContextEnricher) Enrich(mention string, text string) model.Enrichment {
	context := e.Context(mention, text)
	if context == "" {
		return model.Enrichment{}
	}
	lowerContext := strings.ToLower(context)

	enrichment := model.Enrichment{}
	for _, pattern := range e.OrganizationPatterns {
		if match := pattern.FindString(context); match != "" {
			enrichment.Organization = strings.TrimSpace(match)
			break
		}
	}
	for _, city := range e.Cities {
		if strings.Contains(lowerContext, strings.ToLower(city)) {
			enrichment.City = city
			break
		}
	}
	for _, country := range e.Countries {
		if strings.Contains(lowerContext, strings.ToLower(country)) {
			enrichment.Country = country
			break
		}
	}
	for _, pattern := range e.RolePatterns {
		if match := pattern.FindString(lowerContext); match != "" {
			enrichment.Role = capitalize(strings.TrimSpace(match))
			break
		}
	}
	return enrichment
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
