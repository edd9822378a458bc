package formatter

import (
	"fmt"
	"strings"

	"github.com/gnoswap-labs/dissect/dissect"
)

// FormatPattern describes a compiled pattern: its leading delimiter and one
// row per key with the delimiter that ends it.
func FormatPattern(p *dissect.Pattern) string {
	var builder strings.Builder

	builder.WriteString(ruleStyle.Sprint("pattern: "))
	builder.WriteString(p.String() + "\n")
	builder.WriteString(ruleStyle.Sprint("leading delimiter: "))
	builder.WriteString(fmt.Sprintf("%q\n", p.LeadingDelimiter()))
	builder.WriteString(ruleStyle.Sprint("append separator: "))
	builder.WriteString(fmt.Sprintf("%q\n", p.AppendSeparator()))

	pairs := p.Pairs()
	rows := make([][]string, 0, len(pairs)+1)
	rows = append(rows, []string{"#", "key", "name", "modifier", "flags", "delimiter"})
	for i, pair := range pairs {
		k := pair.Key
		modifier := k.Modifier().String()
		if k.IsSkip() {
			modifier = "skip"
		}
		rows = append(rows, []string{
			fmt.Sprint(i + 1),
			k.String(),
			k.Name(),
			modifier,
			keyFlags(k),
			fmt.Sprintf("%q", pair.Delimiter),
		})
	}

	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	builder.WriteString("\n")
	for r, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = fmt.Sprintf("%-*s", widths[i], cell)
		}
		line := strings.TrimRight(strings.Join(cells, " | "), " ")
		if r == 0 {
			line = lineStyle.Sprint(line)
		}
		builder.WriteString(line + "\n")
	}
	return builder.String()
}

func keyFlags(k dissect.Key) string {
	var flags []string
	if k.SkipRightPadding() {
		flags = append(flags, "->")
	}
	if pos, ok := k.AppendPosition(); ok {
		flags = append(flags, fmt.Sprintf("/%d", pos))
	}
	return strings.Join(flags, ",")
}
