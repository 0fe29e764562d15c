package websearch

import (
	"regexp"
	"strings"
)

// Conversational filler that carries no search signal in spoken Italian.
var stopWords = map[string]struct{}{
	"il": {}, "la": {}, "di": {}, "che": {}, "e": {}, "a": {}, "un": {},
	"per": {}, "in": {}, "con": {}, "su": {}, "da": {}, "come": {},
	"del": {}, "della": {}, "buongiorno": {}, "dottore": {}, "volevo": {},
	"sapere": {}, "avere": {}, "ho": {},
}

var (
	nonWordRe = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)
	sectorRe  = regexp.MustCompile(`(?i)settore:\s*([^\n,;]+)`)
)

// Normalizer turns a raw spoken utterance into a search query: strips
// filler, dedups tokens, prepends the client's sector when the context
// declares one, and appends the domain augmentation terms.
type Normalizer struct {
	augmentationTerms string
	fallbackQuery     string
}

func NewNormalizer(augmentationTerms, fallbackQuery string) *Normalizer {
	return &Normalizer{augmentationTerms: augmentationTerms, fallbackQuery: fallbackQuery}
}

// Normalize builds the query for one utterance. clientContext is scanned for
// a "Settore: <name>" declaration; when every token is filler the fallback
// query is returned so the search still lands in the domain.
func (n *Normalizer) Normalize(utterance, clientContext string) string {
	cleaned := nonWordRe.ReplaceAllString(strings.ToLower(utterance), " ")

	seen := make(map[string]struct{})
	var keep []string
	for _, tok := range strings.Fields(cleaned) {
		if len(tok) <= 2 {
			continue
		}
		if _, skip := stopWords[tok]; skip {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		keep = append(keep, tok)
	}

	if len(keep) == 0 {
		return n.fallbackQuery
	}

	query := strings.Join(keep, " ")
	if sector := ExtractSector(clientContext); sector != "" {
		query = sector + " " + query
	}
	if n.augmentationTerms != "" {
		query = query + " " + n.augmentationTerms
	}
	return query
}

// ExtractSector pulls the declared sector out of the client context, e.g.
// "Cliente: Rossi SRL, Settore: Edilizia" yields "Edilizia".
func ExtractSector(clientContext string) string {
	m := sectorRe.FindStringSubmatch(clientContext)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}
