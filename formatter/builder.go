package formatter

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/fatih/color"

	tt "github.com/gnoswap-labs/dissect/internal/types"
)

const tabWidth = 8

// stdinName is shown for failures that did not come from a file.
const stdinName = "<stdin>"

var (
	errorStyle   = color.New(color.FgRed, color.Bold)
	ruleStyle    = color.New(color.FgYellow, color.Bold)
	fileStyle    = color.New(color.FgCyan, color.Bold)
	lineStyle    = color.New(color.FgHiBlue, color.Bold)
	messageStyle = color.New(color.FgRed, color.Bold)
	keyStyle     = color.New(color.FgGreen, color.Bold)
)

const failureTemplate = `{{header .Rule .MaxLineNumWidth .Source .Line}}
{{snippet .Input .Line .MaxLineNumWidth .Padding}}
{{underlineAndMessage .Message .Padding .Input}}

`

var failureTmpl = template.Must(template.New("failure").Funcs(template.FuncMap{
	"header":              header,
	"snippet":             inputSnippet,
	"underlineAndMessage": underlineAndMessage,
}).Parse(failureTemplate))

type FailureData struct {
	Rule            string
	Source          string
	Line            int
	Input           string
	Message         string
	MaxLineNumWidth int
	Padding         string
}

// GenerateFormattedFailures renders failures the way compilers report errors:
// a header, the offending line and the reason.
func GenerateFormattedFailures(failures []tt.Failure) string {
	var builder strings.Builder
	for _, f := range failures {
		builder.WriteString(buildFailure(f))
	}
	return builder.String()
}

func buildFailure(f tt.Failure) string {
	maxLineNumWidth := calculateMaxLineNumWidth(f.Line)

	rule := f.Rule
	if rule == "" {
		rule = "no-candidate"
	}
	source := f.Source
	if source == "" {
		source = stdinName
	}

	data := FailureData{
		Rule:            rule,
		Source:          source,
		Line:            f.Line,
		Input:           f.Input,
		Message:         f.Message,
		MaxLineNumWidth: maxLineNumWidth,
		Padding:         strings.Repeat(" ", maxLineNumWidth+1),
	}

	var buf bytes.Buffer
	if err := failureTmpl.Execute(&buf, data); err != nil {
		return fmt.Sprintf("Error formatting failure: %v", err)
	}
	return buf.String()
}

// utils functions used in the text templates

func header(rule string, maxLineNumWidth int, source string, line int) string {
	endString := errorStyle.Sprint("error: ")
	endString += ruleStyle.Sprintf("%s\n", rule)

	padding := strings.Repeat(" ", maxLineNumWidth)
	endString += lineStyle.Sprintf("%s--> ", padding)
	endString += fileStyle.Sprintf("%s:%d", source, line)
	return endString
}

func inputSnippet(input string, line int, maxLineNumWidth int, padding string) string {
	endString := lineStyle.Sprintf("%s|\n", padding)
	endString += lineStyle.Sprintf("%*d | ", maxLineNumWidth, line)
	endString += input
	return endString
}

func underlineAndMessage(message string, padding string, input string) string {
	endString := lineStyle.Sprintf("%s| ", padding)

	width := calculateVisualColumn(input, len(input)+1)
	if width > 0 {
		endString += messageStyle.Sprintf("%s\n", strings.Repeat("~", width))
		endString += lineStyle.Sprintf("%s= ", padding)
	}
	endString += messageStyle.Sprint(message)
	return endString
}

func calculateMaxLineNumWidth(line int) int {
	return len(fmt.Sprintf("%d", line))
}

// calculateVisualColumn calculates the visual column position
// in a string. taking into account tab characters.
func calculateVisualColumn(line string, column int) int {
	if column < 0 {
		return 0
	}
	visualColumn := 0
	for i, ch := range line {
		if i+1 == column {
			break
		}
		if ch == '\t' {
			visualColumn += tabWidth - (visualColumn % tabWidth)
		} else {
			visualColumn++
		}
	}
	return visualColumn
}
