package formatter

import (
	"encoding/json"
	"io"

	tt "github.com/gnoswap-labs/dissect/internal/types"
)

// WriteJSON writes report as a single JSON document. Nil slices are written
// as empty arrays.
func WriteJSON(w io.Writer, report tt.Report) error {
	if report.Records == nil {
		report.Records = []tt.Record{}
	}
	if report.Failures == nil {
		report.Failures = []tt.Failure{}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}
