package guard

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/illarion/hostlock/internal/storage"
)

// render prints values one key per line, sorted, so line diffs are stable
func render(values storage.Values) string {
	var sb strings.Builder
	for _, k := range values.Keys() {
		sb.WriteString(k)
		sb.WriteString(": ")
		sb.Write(values[k])
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Describe returns the lines that differ between want and got, prefixed
// with "-" for lines only in want and "+" for lines only in got.
func Describe(want, got storage.Values) string {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(render(want), render(got))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var sb strings.Builder
	for _, d := range diffs {
		var prefix string
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		default:
			continue
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			sb.WriteString(prefix)
			sb.WriteString(line)
		}
	}
	return sb.String()
}
