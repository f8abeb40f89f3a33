// Package terms extracts catalog search keywords from free-text
// project descriptions.
package terms

import "strings"

// Extract returns the distinct keywords of text, in first-seen order.
// Everything but letters is treated as a separator, so prices and
// punctuation never leak into search terms. Words of three letters or
// more survive unless they carry no product signal (articles, filler
// verbs, shopping vocabulary like "recommend" or "budget").
func Extract(text string) []string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}

	seen := make(map[string]bool)
	var out []string
	for _, w := range strings.Fields(b.String()) {
		if len(w) <= 2 || stopWords[w] || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	return out
}

var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "is": true, "are": true, "was": true,
	"were": true, "be": true, "been": true, "being": true, "have": true,
	"has": true, "had": true, "do": true, "does": true, "did": true,
	"will": true, "would": true, "could": true, "should": true, "may": true,
	"might": true, "shall": true, "can": true, "need": true, "dare": true,
	"ought": true, "used": true, "to": true, "of": true, "in": true,
	"for": true, "on": true, "with": true, "at": true, "by": true,
	"from": true, "as": true, "into": true, "through": true, "during": true,
	"before": true, "after": true, "above": true, "below": true,
	"between": true, "out": true, "off": true, "over": true, "under": true,
	"again": true, "further": true, "then": true, "once": true, "here": true,
	"there": true, "when": true, "where": true, "why": true, "how": true,
	"all": true, "each": true, "every": true, "both": true, "few": true,
	"more": true, "most": true, "other": true, "some": true, "such": true,
	"no": true, "nor": true, "not": true, "only": true, "own": true,
	"same": true, "so": true, "than": true, "too": true, "very": true,
	"just": true, "because": true, "but": true, "and": true, "or": true,
	"if": true, "while": true, "although": true, "though": true,
	"until": true, "unless": true, "since": true, "what": true,
	"which": true, "who": true, "whom": true, "this": true, "that": true,
	"these": true, "those": true, "i": true, "me": true, "my": true,
	"myself": true, "we": true, "our": true, "ours": true, "you": true,
	"your": true, "yours": true, "he": true, "him": true, "his": true,
	"she": true, "her": true, "hers": true, "it": true, "its": true,
	"they": true, "them": true, "their": true, "get": true, "give": true,
	"want": true, "like": true, "look": true, "find": true,
	"recommendation": true, "recommend": true, "suggest": true,
	"suggestion": true, "please": true, "help": true, "looking": true,
	"something": true, "anything": true, "within": true, "budget": true,
	"price": true, "cost": true, "about": true, "around": true,
	"approximately": true, "new": true, "good": true, "best": true,
	"cheap": true, "expensive": true,
}
