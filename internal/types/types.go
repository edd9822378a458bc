package types

// Record is one input line that a rule dissected successfully.
type Record struct {
	Source string            `json:"source"`
	Line   int               `json:"line"`
	Rule   string            `json:"rule"`
	Fields map[string]string `json:"fields"`
}

// Failure is one input line that no rule could dissect.
type Failure struct {
	Source  string `json:"source"`
	Line    int    `json:"line"`
	Input   string `json:"input"`
	Rule    string `json:"rule,omitempty"` // last rule tried, empty when no rule was a candidate
	Message string `json:"message"`
}

// Report collects the outcome of dissecting one or more inputs.
type Report struct {
	Records  []Record  `json:"records"`
	Failures []Failure `json:"failures"`
}

// Merge appends the records and failures of other to r.
func (r *Report) Merge(other Report) {
	r.Records = append(r.Records, other.Records...)
	r.Failures = append(r.Failures, other.Failures...)
}

// Empty reports whether nothing was recorded.
func (r Report) Empty() bool {
	return len(r.Records) == 0 && len(r.Failures) == 0
}

// ConfigRule is a single rule entry of the configuration file.
type ConfigRule struct {
	Name    string `yaml:"name"`
	Pattern string `yaml:"pattern"`
	// AppendSeparator overrides the file-wide separator when set.
	AppendSeparator *string `yaml:"append_separator,omitempty"`
	Prefix          string  `yaml:"prefix,omitempty"`
	IgnoreFailure   bool    `yaml:"ignore_failure,omitempty"`
}
