package pipeline

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/siherrmann/nerval/helper"
	"github.com/siherrmann/nerval/model"
)

// NameRule is one step of person name decomposition. Pattern is matched at
// the start of the remaining name, Action records what was recognized and
// returns the text that replaces the match.
type NameRule struct {
	Name    string
	Pattern *regexp.Regexp
	When    func(name *model.PersonName) bool
	Action  func(name *model.PersonName, match []string) string
}

// Abbreviations maps abbreviated civilities and titles to their full form
var Abbreviations = map[string]string{
	"M.":    "Monsieur",
	"Mme":   "Madame",
	"Mme.":  "Madame",
	"Mlle":  "Mademoiselle",
	"Mlle.": "Mademoiselle",
	"Prof.": "Professeur",
	"Dr.":   "Docteur",
	"Me":    "Maître",
}

// Civilities are recognized in front of a name
var Civilities = []string{"Monsieur", "Madame", "Mademoiselle"}

// HonorificTitles are recognized after the civility, with or without article
var HonorificTitles = []string{
	"Professeur", "Docteur", "Sénateur", "Député", "Président",
	"Délégué", "Ministre", "Ambassadeur", "Baron", "Comte",
	"Directeur", "Secrétaire", "Rapporteur", "Général", "Maître",
}

// DefaultNameRules is the ordered rule list used by ParsePersonName
var DefaultNameRules = []NameRule{
	{
		Name:    "abbreviation",
		Pattern: regexp.MustCompile(`^(M\.|Mme\.?|Mlle\.?|Prof\.|Dr\.|Me)(?:\s+|$)`),
		Action: func(_ *model.PersonName, match []string) string {
			return Abbreviations[match[1]] + " "
		},
	},
	{
		Name:    "civility",
		Pattern: regexp.MustCompile(`^(` + strings.Join(Civilities, "|") + `)(?:\s+|$)`),
		Action: func(name *model.PersonName, match []string) string {
			name.Civility = match[1]
			return ""
		},
	},
	{
		Name:    "article_title",
		Pattern: regexp.MustCompile(`^(le|la|l')\s*(?i:(` + strings.Join(HonorificTitles, "|") + `)e?)(?:\s+|$)`),
		Action: func(name *model.PersonName, match []string) string {
			name.Title = canonicalTitle(match[2])
			article := match[1] + " "
			if strings.HasSuffix(match[1], "'") {
				article = match[1]
			}
			name.FullTitle = joinNonEmpty(name.Civility, article+name.Title)
			return ""
		},
	},
	{
		Name:    "title",
		Pattern: regexp.MustCompile(`^(?i:(` + strings.Join(HonorificTitles, "|") + `)e?)(?:\s+|$)`),
		When: func(name *model.PersonName) bool {
			return name.Title == ""
		},
		Action: func(name *model.PersonName, match []string) string {
			name.Title = canonicalTitle(match[1])
			name.FullTitle = joinNonEmpty(name.Civility, name.Title)
			return ""
		},
	},
}

// ParsePersonName decomposes a person mention with DefaultNameRules
func ParsePersonName(text string) model.PersonName {
	return ParsePersonNameWithRules(text, DefaultNameRules)
}

// ParsePersonNameWithRules applies each rule at most once, in order, and splits
// the remaining tokens into first and last name. Tokens starting with a lowercase
// letter ("de", "von", "van") start the last name.
func ParsePersonNameWithRules(text string, rules []NameRule) model.PersonName {
	name := model.PersonName{}
	rest := strings.TrimSpace(text)

	for _, rule := range rules {
		if rule.When != nil && !rule.When(&name) {
			continue
		}
		loc := rule.Pattern.FindStringSubmatchIndex(rest)
		if loc == nil {
			continue
		}
		match := make([]string, len(loc)/2)
		for i := range match {
			if loc[2*i] >= 0 {
				match[i] = rest[loc[2*i]:loc[2*i+1]]
			}
		}
		rest = strings.TrimSpace(rule.Action(&name, match) + rest[loc[1]:])
	}

	if name.FullTitle == "" {
		name.FullTitle = joinNonEmpty(name.Civility, name.Title)
	}

	name.FirstName, name.LastName = splitGivenName(strings.Fields(rest))
	return name
}

func splitGivenName(parts []string) (string, string) {
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return "", parts[0]
	case 2:
		return parts[0], parts[1]
	}

	for i, part := range parts {
		r, _ := utf8.DecodeRuneInString(part)
		if unicode.IsLower(r) {
			return strings.Join(parts[:i], " "), strings.Join(parts[i:], " ")
		}
	}
	return strings.Join(parts[:len(parts)-1], " "), parts[len(parts)-1]
}

func canonicalTitle(matched string) string {
	folded := helper.NormalizeText(matched)
	for _, title := range HonorificTitles {
		normalized := helper.NormalizeText(title)
		if folded == normalized || folded == normalized+"e" {
			return title
		}
	}
	return matched
}

func joinNonEmpty(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

// titleTokens are normalized tokens that carry no identity on their own
var titleTokens = buildTitleTokens()

func buildTitleTokens() map[string]bool {
	tokens := map[string]bool{}
	for _, t := range []string{
		"madam", "sir", "lord", "lady", "le", "la", "les", "l'", "the",
		"mr", "mr.", "mrs", "mrs.", "dr", "prof", "herr", "frau",
	} {
		tokens[t] = true
	}
	for abbreviation, full := range Abbreviations {
		tokens[helper.NormalizeText(abbreviation)] = true
		tokens[helper.NormalizeText(full)] = true
	}
	for _, c := range Civilities {
		tokens[helper.NormalizeText(c)] = true
	}
	for _, t := range HonorificTitles {
		tokens[helper.NormalizeText(t)] = true
		tokens[helper.NormalizeText(t)+"e"] = true
	}
	return tokens
}

// IsTitleOnly reports whether text has no tokens left once civilities, titles,
// abbreviations and articles are removed ("Monsieur", "Dr.", "le Président").
func IsTitleOnly(text string) bool {
	for _, token := range strings.Fields(helper.NormalizeText(text)) {
		if titleTokens[token] {
			continue
		}
		// "l'ambassadeur"
		if rest, ok := strings.CutPrefix(token, "l'"); ok && titleTokens[rest] {
			continue
		}
		return false
	}
	return true
}
