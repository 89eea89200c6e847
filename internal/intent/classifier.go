package intent

import (
	"regexp"
	"strings"
)

// Kind is the coarse dispatch decision for an inbound message.
type Kind int

const (
	// KindRead routes to the non-executing, informational path.
	KindRead Kind = iota
	// KindWrite routes to the account-scoped pipeline, the only path
	// that can reach trade execution.
	KindWrite
)

func (k Kind) String() string {
	if k == KindWrite {
		return "WRITE"
	}
	return "READ"
}

var (
	// Account-scoped vocabulary always binds the message to the user's
	// account, so it must take the WRITE path regardless of phrasing.
	accountTerms = []string{
		"balance", "history", "status", "portfolio", "position",
		"my trades", "my bets", "my orders", "holdings",
	}

	actionVerbs = []string{
		"buy", "sell", "purchase", "trade", "bet", "wager",
		"long", "short", "spend", "put",
	}

	// Dollar signs, decimal amounts, or spelled-out currency words.
	moneyPattern = regexp.MustCompile(`\$\s*\d|\d+\s*(?:dollars?|bucks?|cents?|usd)\b|\d+\.\d{2}\b`)

	questionPattern = regexp.MustCompile(`\?\s*$|^(?:what|who|when|where|why|how|is|are|will|would|can|could|do|does)\b`)
)

// Classify dispatches text to READ or WRITE. Rules apply in order:
// account-scoped vocabulary forces WRITE; a question marker forces READ;
// otherwise WRITE requires both an action verb and a monetary reference;
// everything else defaults to READ. Ambiguity always resolves toward the
// non-executing path.
func Classify(text string) Kind {
	lower := strings.ToLower(strings.TrimSpace(text))

	for _, term := range accountTerms {
		if strings.Contains(lower, term) {
			return KindWrite
		}
	}

	if questionPattern.MatchString(lower) {
		return KindRead
	}

	if hasActionVerb(lower) && moneyPattern.MatchString(lower) {
		return KindWrite
	}

	return KindRead
}

func hasActionVerb(lower string) bool {
	for _, verb := range actionVerbs {
		if containsWord(lower, verb) {
			return true
		}
	}
	return false
}

// containsWord matches verb on word boundaries so "buy" does not fire
// inside "buyer's guide is on the way".
func containsWord(s, word string) bool {
	idx := 0
	for {
		i := strings.Index(s[idx:], word)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(word)
		beforeOK := start == 0 || !isWordChar(s[start-1])
		afterOK := end == len(s) || !isWordChar(s[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '_'
}
