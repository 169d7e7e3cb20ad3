package repl

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/simpleproc/lang"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{"help", "vars", "macros", "edit", "clear", "quit"}

// isWordBoundary reports whether r separates tokens of a block body.
func isWordBoundary(r rune) bool {
	return r == '(' || r == ')' || r == '"' || unicode.IsSpace(r)
}

// wordBounds returns the word at the cursor position and its byte
// boundaries within input. The word is empty when the cursor sits on a
// boundary.
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

// inLiteral reports whether offset lies inside a string literal.
func inLiteral(input string, offset int) bool {
	open := false

	for i := 0; i < offset && i < len(input); i++ {
		switch input[i] {
		case '\\':
			if open {
				i++
			}
		case '"':
			open = !open
		}
	}

	return open
}

// candidates returns the completions for word: variable references for a
// word starting with '$', macro names otherwise.
func candidates(word string, vars *lang.Scope) []string {
	if !strings.HasPrefix(word, "$") {
		return lang.MacroNames()
	}

	if vars == nil {
		return nil
	}

	names := make([]string, 0, vars.Len())
	for name := range vars.All() {
		names = append(names, "$"+name)
	}

	return names
}

// computeMatches calculates the fuzzy matches for the word at the cursor,
// ranked best-first, along with the word boundaries.
func (m model) computeMatches() (matches fuzzy.Matches, wordStart, wordEnd int) {
	input := m.input.Value()

	word, ws, we := wordBounds(input, m.input.Position())
	if word == "" {
		return nil, ws, we
	}

	var list []string

	switch {
	case m.mode == modeCtrl:
		list = ctrlCommands
	case inLiteral(input, ws):
		return nil, ws, we
	default:
		list = candidates(word, m.proc.Vars())
	}

	return fuzzy.Find(word, list), ws, we
}

// renderCandidateBar builds the single-line completion bar, ellipsized to fit
// within width. The selected candidate uses the selected style while
// tab-cycling.
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

	sepWidth := lipgloss.Width(sep)
	ellipsis := hintStyle.Render("...")
	ellipsisWidth := lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		rendered := renderCandidate(match, tabActive && i == suggIdx)

		entryWidth := lipgloss.Width(rendered)
		if i > 0 {
			entryWidth += sepWidth
		}

		if i > 0 && used+entryWidth+ellipsisWidth > width {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += entryWidth
	}

	return b.String()
}

// renderCandidate renders a candidate with its matched characters
// highlighted.
func renderCandidate(match fuzzy.Match, selected bool) string {
	base, highlight := suggestionStyle, matchStyle
	if selected {
		base, highlight = selectedStyle, selectedMatchStyle
	}

	matched := make(map[int]bool, len(match.MatchedIndexes))
	for _, idx := range match.MatchedIndexes {
		matched[idx] = true
	}

	var b strings.Builder

	for i, r := range match.Str {
		if matched[i] {
			b.WriteString(highlight.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}

	return b.String()
}
