package projection

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"golang.org/x/term"
	"golang.org/x/text/width"
)

// DefaultWidth is used when the output is not a terminal.
const DefaultWidth = 120

const (
	columnGap = 2
	minColumn = 3
	ellipsis  = "…"
)

// Width returns the terminal width of f, or DefaultWidth.
func Width(f *os.File) int {
	if f == nil || !term.IsTerminal(int(f.Fd())) {
		return DefaultWidth
	}
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil || w <= 0 {
		return DefaultWidth
	}
	return w
}

// Write draws t as aligned columns no wider than width. Wide columns are
// shrunk, widest first, and their cells truncated. A width <= 0 disables
// truncation.
func Write(w io.Writer, t Table, width int) error {
	headers := t.Headers()
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = displayWidth(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if n := displayWidth(cell); i < len(widths) && n > widths[i] {
				widths[i] = n
			}
		}
	}
	if width > 0 {
		fit(widths, width)
	}

	if err := writeRow(w, headers, widths); err != nil {
		return err
	}
	rule := make([]string, len(widths))
	for i, n := range widths {
		rule[i] = strings.Repeat("-", n)
	}
	if err := writeRow(w, rule, widths); err != nil {
		return err
	}
	for _, row := range t.Rows {
		if err := writeRow(w, row, widths); err != nil {
			return err
		}
	}
	return nil
}

func fit(widths []int, width int) {
	total := func() int {
		n := 0
		for _, w := range widths {
			n += w
		}
		if len(widths) > 1 {
			n += columnGap * (len(widths) - 1)
		}
		return n
	}
	for total() > width {
		widest := 0
		for i, w := range widths {
			if w > widths[widest] {
				widest = i
			}
		}
		if widths[widest] <= minColumn {
			return
		}
		widths[widest]--
	}
}

func writeRow(w io.Writer, cells []string, widths []int) error {
	var b strings.Builder
	for i, n := range widths {
		cell := ""
		if i < len(cells) {
			cell = truncate(cells[i], n)
		}
		b.WriteString(cell)
		if i < len(widths)-1 {
			b.WriteString(strings.Repeat(" ", n-displayWidth(cell)+columnGap))
		}
	}
	b.WriteByte('\n')
	_, err := fmt.Fprint(w, strings.TrimRight(b.String(), " \n")+"\n")
	return err
}

// runeWidth is the number of terminal cells r occupies: 2 for East Asian
// wide and fullwidth runes, 0 for combining marks and format characters.
func runeWidth(r rune) int {
	if unicode.In(r, unicode.Mn, unicode.Me, unicode.Cf) {
		return 0
	}
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	}
	return 1
}

func displayWidth(s string) int {
	n := 0
	for _, r := range s {
		n += runeWidth(r)
	}
	return n
}

// truncate cuts s to at most n cells, ending in an ellipsis when shortened.
func truncate(s string, n int) string {
	if displayWidth(s) <= n {
		return s
	}
	var b strings.Builder
	used := 0
	for _, r := range s {
		w := runeWidth(r)
		if used+w > n-1 {
			break
		}
		b.WriteRune(r)
		used += w
	}
	return b.String() + ellipsis
}
