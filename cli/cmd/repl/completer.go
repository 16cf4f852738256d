package repl

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/stencil/lang"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{
	"ast", "clear", "compile", "edit", "help", "quit", "set", "unset", "vars",
}

// literals are completed alongside functions and variables.
var literals = []string{"false", "null", "true"}

// isWordBoundary reports whether r delimits a completion word.
func isWordBoundary(r rune) bool {
	switch r {
	case '.', ' ', '\t',
		'(', ')', '[', ']', '{', '}',
		'+', '-', '*', '/', '%', '~',
		'<', '>', '=', '!',
		'&', '|', ',', '?', ':',
		'\'', '"':
		return true
	}

	return false
}

// wordBounds returns the word at the cursor and its byte boundaries within
// input. The word is empty when the cursor sits on a boundary.
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(max(cursor, 0), len(input))

	start = cursor
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	end = cursor
	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// parentPath returns the member-access chain leading up to the word at
// wordStart, e.g. "user.address" for "x ~ user.address.ci". It is empty
// unless the word directly follows a dot.
func parentPath(input string, wordStart int) string {
	prefix := input[:wordStart]
	if !strings.HasSuffix(prefix, ".") {
		return ""
	}

	prefix = strings.TrimSuffix(prefix, ".")

	pos := len(prefix)
	for pos > 0 {
		r, size := utf8.DecodeLastRuneInString(prefix[:pos])
		if r != '.' && isWordBoundary(r) {
			break
		}

		pos -= size
	}

	return prefix[pos:]
}

// completionKind classifies the position of the word at wordStart.
type completionKind int

const (
	completeTop completionKind = iota
	completeMember
	completeFilter
	completeTest
)

func classify(input string, wordStart int) completionKind {
	prefix := input[:wordStart]
	if strings.HasSuffix(prefix, ".") {
		return completeMember
	}

	trimmed := strings.TrimRight(prefix, " \t")
	if strings.HasSuffix(trimmed, "|") {
		return completeFilter
	}

	if trimmed != prefix {
		fields := strings.Fields(trimmed)
		if n := len(fields); n > 0 && fields[n-1] == "is" ||
			n > 1 && fields[n-2] == "is" && fields[n-1] == "not" {
			return completeTest
		}
	}

	return completeTop
}

// candidates returns the names that can complete the word at wordStart.
func candidates(s *Session, input string, wordStart int) []string {
	env := s.env()

	switch classify(input, wordStart) {
	case completeFilter:
		return env.Filters().Names()

	case completeTest:
		return env.Tests().Names()

	case completeMember:
		v, ok := s.Lookup(parentPath(input, wordStart))
		if !ok || !lang.IsMapping(v) {
			return nil
		}

		keys := make([]string, 0)
		for _, k := range lang.Keys(v) {
			keys = append(keys, lang.ToString(k))
		}

		return keys

	default:
		names := slices.Concat(s.Names(), env.Functions().Names(), literals)
		slices.Sort(names)

		return slices.Compact(names)
	}
}

// complete returns the fuzzy matches for the word at the cursor, ranked
// best first, and the word boundaries. An empty word yields no matches
// except after a dot or a filter pipe, where every candidate is offered.
func complete(s *Session, mode inputMode, input string, cursor int) (
	matches fuzzy.Matches,
	wordStart, wordEnd int,
) {
	word, wordStart, wordEnd := wordBounds(input, cursor)

	var names []string

	if mode == modeCtrl {
		if word == "" || strings.ContainsAny(input[:wordStart], " \t") {
			return nil, wordStart, wordEnd
		}

		names = ctrlCommands
	} else {
		names = candidates(s, input, wordStart)
	}

	if len(names) == 0 {
		return nil, wordStart, wordEnd
	}

	if word == "" {
		kind := classify(input, wordStart)
		if mode == modeCtrl || kind == completeTop || kind == completeTest {
			return nil, wordStart, wordEnd
		}

		matches = make(fuzzy.Matches, len(names))
		for i, n := range names {
			matches[i] = fuzzy.Match{Str: n, Index: i}
		}

		return matches, wordStart, wordEnd
	}

	return fuzzy.Find(word, names), wordStart, wordEnd
}

// renderCandidateBar builds the single-line completion bar, ellipsized to
// fit within width. The selected candidate uses the selected style.
func renderCandidateBar(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	ellipsis := hintStyle.Render("...")
	reserve := lipgloss.Width(sep) + lipgloss.Width(ellipsis)

	var (
		b    strings.Builder
		used int
	)

	for i, match := range matches {
		rendered := renderCandidate(match, tabActive && i == suggIdx)
		w := lipgloss.Width(rendered)

		if i > 0 {
			w += lipgloss.Width(sep)

			if i < len(matches)-1 && used+w+reserve > width || used+w > width {
				b.WriteString(sep)
				b.WriteString(ellipsis)

				break
			}

			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += w
	}

	return b.String()
}

// renderCandidate renders a candidate with its matched characters
// highlighted.
func renderCandidate(match fuzzy.Match, selected bool) string {
	base, accent := suggestionStyle, matchStyle
	if selected {
		base, accent = selectedStyle, selectedMatchStyle
	}

	matched := make(map[int]bool, len(match.MatchedIndexes))
	for _, idx := range match.MatchedIndexes {
		matched[idx] = true
	}

	var b strings.Builder

	for i, r := range match.Str {
		if matched[i] {
			b.WriteString(accent.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}

	return b.String()
}
