package summarize

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"ainews-watch/aggregator/internal/models"
)

const (
	// TargetSentences is the summary length in sentences.
	TargetSentences = 6

	minSentenceLength = 30 // fragments of this many characters or fewer are dropped
	excerptLength     = 600
)

// ImportanceKeywords boost sentences that carry announcements, metrics or
// business facts. Each keyword counts once per sentence.
var ImportanceKeywords = []string{
	"announced", "launched", "released", "developed", "introduced",
	"ai", "artificial intelligence", "machine learning", "model",
	"breakthrough", "innovation", "research", "study", "found",
	"million", "billion", "percent", "growth", "market",
	"ceo", "company", "startup", "partnership", "acquisition",
}

var (
	sentenceBoundary = regexp.MustCompile(`[.!?]\s+[A-Z]`)
	wordPattern      = regexp.MustCompile(`[\p{L}\p{N}_]{4,}`)
)

type scoredSentence struct {
	position int
	text     string
	score    float64
}

// Extractive builds a summary from the article's own sentences: the
// TargetSentences best scoring ones, in their original order. It is
// deterministic.
func Extractive(content, title string) string {
	sentences := SplitSentences(content)

	if len(sentences) == 0 {
		if utf8.RuneCountInString(content) > excerptLength {
			return models.Truncate(content, excerptLength) + "..."
		}
		return content
	}

	if len(sentences) <= TargetSentences {
		return strings.Join(sentences, " ")
	}

	titleWords := wordSet(title)
	scored := make([]scoredSentence, len(sentences))
	for i, s := range sentences {
		scored[i] = scoredSentence{
			position: i,
			text:     s,
			score:    ScoreSentence(s, titleWords, i, len(sentences)),
		}
	}

	// Equal scores keep their original order, so the earlier sentence wins.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	top := scored[:TargetSentences]
	sort.Slice(top, func(i, j int) bool {
		return top[i].position < top[j].position
	})

	parts := make([]string, len(top))
	for i, s := range top {
		parts[i] = s.text
	}
	return strings.Join(parts, " ")
}

// SplitSentences normalizes whitespace and splits text where '.', '!' or '?'
// is followed by whitespace and an upper-case letter. Fragments of 30
// characters or fewer are discarded.
func SplitSentences(text string) []string {
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return nil
	}

	var pieces []string
	start := 0
	for _, m := range sentenceBoundary.FindAllStringIndex(text, -1) {
		pieces = append(pieces, text[start:m[0]+1])
		start = m[1] - 1
	}
	pieces = append(pieces, text[start:])

	sentences := make([]string, 0, len(pieces))
	for _, p := range pieces {
		p = strings.TrimSpace(p)
		if utf8.RuneCountInString(p) > minSentenceLength {
			sentences = append(sentences, p)
		}
	}
	return sentences
}

// ScoreSentence rates a sentence's importance for the summary.
func ScoreSentence(sentence string, titleWords map[string]struct{}, position, total int) float64 {
	score := 0.0
	lower := strings.ToLower(sentence)

	for w := range wordSet(lower) {
		if _, ok := titleWords[w]; ok {
			score += 2
		}
	}

	for _, kw := range ImportanceKeywords {
		if strings.Contains(lower, kw) {
			score += 1.5
		}
	}

	switch {
	case float64(position) < float64(total)*0.2:
		score += 3
	case float64(position) > float64(total)*0.8:
		score += 1.5
	}

	if n := len(strings.Fields(sentence)); n >= 15 && n <= 35 {
		score += 1
	}

	if strings.IndexFunc(sentence, unicode.IsDigit) >= 0 {
		score += 1
	}

	if strings.ContainsAny(sentence, "\"“”") {
		score += 0.5
	}

	return score
}

func wordSet(text string) map[string]struct{} {
	words := make(map[string]struct{})
	for _, w := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		words[w] = struct{}{}
	}
	return words
}
