package report

import "strings"

const ellipsis = "..."

// Snippet shortens text to about width characters while keeping the columns
// colStart..colEnd (1-based, inclusive) visible, marking cut ends with "...".
// Leading whitespace is dropped first. The returned columns locate the same
// span inside the snippet. A width of zero or less disables truncation.
func Snippet(text string, colStart, colEnd, width int) (string, int, int) {
	runes := []rune(text)
	colStart, colEnd = clampColumns(len(runes), colStart, colEnd)

	indent := len(runes) - len([]rune(strings.TrimLeft(text, " \t")))
	if indent >= colStart {
		indent = max(colStart-1, 0)
	}
	runes = runes[indent:]
	colStart -= indent
	colEnd -= indent

	n, e := len(runes), len(ellipsis)
	if width <= 0 || n <= width {
		return string(runes), colStart, colEnd
	}
	width = max(width, 2*e+1)

	// span fits at the start
	if colEnd <= width-e {
		return string(runes[:width-e]) + ellipsis, colStart, colEnd
	}
	// span fits at the end
	if from := n - (width - e); colStart-1 >= from {
		return ellipsis + string(runes[from:]), colStart - from + e, colEnd - from + e
	}

	inner := width - 2*e
	span := colEnd - colStart + 1
	// a span wider than the window is kept whole
	if span > inner {
		from, to := colStart-1, colEnd
		head, tail := ellipsis, ellipsis
		if from == 0 {
			head = ""
		}
		if to == n {
			tail = ""
		}
		return head + string(runes[from:to]) + tail, len(head) + 1, len(head) + span
	}
	from := colStart - 1
	if span < inner {
		from -= (inner - span) / 2
	}
	to := from + inner
	tail := ellipsis
	if to >= n {
		to, from, tail = n, n-inner, ""
	}
	return ellipsis + string(runes[from:to]) + tail, colStart - from + e, colEnd - from + e
}

// Highlight wraps columns colStart..colEnd of text in >>> and <<< markers.
func Highlight(text string, colStart, colEnd int) string {
	runes := []rune(text)
	if len(runes) == 0 {
		return text
	}
	colStart, colEnd = clampColumns(len(runes), colStart, colEnd)
	return string(runes[:colStart-1]) + ">>>" + string(runes[colStart-1:colEnd]) + "<<<" + string(runes[colEnd:])
}

func clampColumns(n, colStart, colEnd int) (int, int) {
	if n == 0 {
		return 1, 0
	}
	colStart = min(max(colStart, 1), n)
	colEnd = min(max(colEnd, colStart), n)
	return colStart, colEnd
}
