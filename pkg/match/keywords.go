package match

import (
	"sort"
	"strings"
)

// minKeywordLen drops very short tokens; the important-words set overrides it.
const minKeywordLen = 3

// stopwords are function words that add noise when comparing questions.
// Indonesian first (the primary corpus language), English second.
var stopwords = map[string]struct{}{
	// Indonesian
	"yang": {}, "di": {}, "ke": {}, "dari": {}, "untuk": {}, "dengan": {},
	"pada": {}, "dalam": {}, "adalah": {}, "ialah": {}, "itu": {}, "ini": {},
	"dan": {}, "atau": {}, "juga": {}, "akan": {}, "sudah": {}, "telah": {},
	"bisa": {}, "dapat": {}, "ada": {}, "apa": {}, "apakah": {}, "siapa": {},
	"siapakah": {}, "kapan": {}, "dimana": {}, "mana": {}, "bagaimana": {},
	"mengapa": {}, "kenapa": {}, "berapa": {}, "saya": {}, "kamu": {},
	"anda": {}, "dia": {}, "kami": {}, "kita": {}, "mereka": {}, "nya": {},
	"oleh": {}, "agar": {}, "supaya": {}, "karena": {}, "sebab": {},
	"jika": {}, "kalau": {}, "namun": {}, "tetapi": {}, "tapi": {},
	"serta": {}, "sebagai": {}, "secara": {}, "yaitu": {}, "yakni": {},
	"lah": {}, "kah": {}, "pun": {}, "saja": {}, "hanya": {}, "lebih": {},
	"paling": {}, "sangat": {}, "sekali": {},
	// English
	"a": {}, "an": {}, "the": {}, "is": {}, "are": {}, "was": {}, "were": {},
	"be": {}, "been": {}, "do": {}, "does": {}, "did": {}, "have": {},
	"has": {}, "had": {}, "of": {}, "on": {}, "in": {}, "at": {}, "to": {},
	"for": {}, "from": {}, "with": {}, "by": {}, "and": {}, "or": {},
	"but": {}, "as": {}, "that": {}, "this": {}, "these": {}, "those": {},
	"it": {}, "its": {}, "what": {}, "who": {}, "when": {}, "where": {},
	"which": {}, "why": {}, "how": {}, "you": {}, "your": {}, "i": {},
	"we": {}, "they": {}, "he": {}, "she": {},
}

// importantWords survive stopword and length filtering and earn a scoring
// bonus: negations and short tokens that flip the meaning of a question.
var importantWords = map[string]struct{}{
	"tidak": {}, "bukan": {}, "jangan": {}, "tanpa": {}, "belum": {},
	"tak": {}, "no": {}, "not": {}, "non": {}, "never": {},
}

// IsImportantWord reports whether a normalized token is in the override set.
func IsImportantWord(token string) bool {
	_, ok := importantWords[token]
	return ok
}

// ExtractKeywords derives the comparison token set from normalized text:
// split on whitespace, drop stopwords and tokens shorter than minKeywordLen
// (important words are always kept), deduplicate preserving first-occurrence
// order. Empty input yields an empty slice.
func ExtractKeywords(normalized string) []string {
	fields := strings.Fields(normalized)
	keywords := make([]string, 0, len(fields))
	seen := make(map[string]struct{}, len(fields))
	for _, tok := range fields {
		if !IsImportantWord(tok) {
			if _, stop := stopwords[tok]; stop {
				continue
			}
			if len([]rune(tok)) < minKeywordLen {
				continue
			}
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		keywords = append(keywords, tok)
	}
	return keywords
}

// TopLongestKeywords returns the n longest keywords, longest first, ties kept
// in first-seen order. Used to bound the candidate pre-filter.
func TopLongestKeywords(keywords []string, n int) []string {
	if n <= 0 || len(keywords) == 0 {
		return nil
	}
	sorted := make([]string, len(keywords))
	copy(sorted, keywords)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len([]rune(sorted[i])) > len([]rune(sorted[j]))
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
