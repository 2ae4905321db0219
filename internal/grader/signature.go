package grader

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/samber/lo"
)

// trackedKeywords are the clause keywords whose presence the structural
// check cares about, in reporting order.
var trackedKeywords = []string{"ORDER BY", "DISTINCT", "GROUP BY", "LIMIT", "HAVING"}

var keywordPatterns = func() map[string]*regexp.Regexp {
	patterns := make(map[string]*regexp.Regexp, len(trackedKeywords))
	for _, keyword := range trackedKeywords {
		// multi-word keywords match across any run of whitespace
		expr := `(?i)\b` + strings.ReplaceAll(regexp.QuoteMeta(keyword), " ", `\s+`) + `\b`
		patterns[keyword] = regexp.MustCompile(expr)
	}
	return patterns
}()

// Signature records, per tracked keyword, whether it appears in a SQL text.
type Signature map[string]bool

// SignatureOf scans a SQL text for the tracked clause keywords. The text is
// padded so a keyword at the very start or end is still detected.
func SignatureOf(sql string) Signature {
	padded := " " + sql + " "

	signature := make(Signature, len(trackedKeywords))
	for keyword, pattern := range keywordPatterns {
		signature[keyword] = pattern.MatchString(padded)
	}

	return signature
}

// Has reports whether the signature saw the given keyword.
func (s Signature) Has(keyword string) bool {
	return s[keyword]
}

// MissingKeywords returns the keywords present in base but absent from
// student, in reporting order. The check is one-directional: extra clauses
// in the student's query are not flagged.
func MissingKeywords(base, student Signature) []string {
	return lo.Filter(trackedKeywords, func(keyword string, _ int) bool {
		return base[keyword] && !student[keyword]
	})
}

// omissionMessage renders the omission notices for the learner.
func omissionMessage(keywords []string) string {
	notices := lo.Map(keywords, func(keyword string, _ int) string {
		return fmt.Sprintf("it looks like you forgot to use '%s'", keyword)
	})

	return strings.Join(notices, "; ")
}
