package formatter

import (
	"fmt"
	"sort"
	"strings"

	tt "github.com/gnoswap-labs/dissect/internal/types"
)

// GenerateFormattedRecords renders each record as a location header followed
// by its fields in key order.
func GenerateFormattedRecords(records []tt.Record) string {
	var builder strings.Builder
	for _, r := range records {
		builder.WriteString(formatRecord(r))
	}
	return builder.String()
}

func formatRecord(r tt.Record) string {
	source := r.Source
	if source == "" {
		source = stdinName
	}

	var builder strings.Builder
	builder.WriteString(fileStyle.Sprintf("%s:%d", source, r.Line))
	builder.WriteString(" ")
	builder.WriteString(ruleStyle.Sprintf("%s\n", r.Rule))

	keys := make([]string, 0, len(r.Fields))
	width := 0
	for k := range r.Fields {
		keys = append(keys, k)
		if len(k) > width {
			width = len(k)
		}
	}
	sort.Strings(keys)

	for _, k := range keys {
		builder.WriteString("    ")
		builder.WriteString(keyStyle.Sprintf("%-*s", width, k))
		builder.WriteString(fmt.Sprintf(" = %q\n", r.Fields[k]))
	}
	return builder.String()
}
