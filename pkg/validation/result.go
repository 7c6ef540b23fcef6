package validation

// Issue codes reported by the form validator.
const (
	CodeEmpty         = "form.empty.error"
	CodePattern       = "form.pattern.error"
	CodeInvalid       = "form.invalid.error"
	CodeInvalidSchema = "connectorBuilder.invalidSchema"
)

// Issue is a single rule violation at a field path such as
// `streams[0].streamSlicer.step`.
type Issue struct {
	Path    string `json:"path"`
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

// Result captures the outcome of validating form values.
type Result struct {
	Valid  bool    `json:"valid"`
	Issues []Issue `json:"issues,omitempty"`
}

// Errors returns the first issue code reported for each path.
func (r Result) Errors() map[string]string {
	out := make(map[string]string, len(r.Issues))
	for _, issue := range r.Issues {
		if _, exists := out[issue.Path]; exists {
			continue
		}
		out[issue.Path] = issue.Code
	}
	return out
}

// IssueAt returns the first issue reported for path.
func (r Result) IssueAt(path string) (Issue, bool) {
	for _, issue := range r.Issues {
		if issue.Path == path {
			return issue, true
		}
	}
	return Issue{}, false
}
