package engine

import "strings"

// NoOutput replaces the output of a successful run that printed nothing.
const NoOutput = "(no output)"

const unknownFault = "Error: run failed without a diagnostic"

// Response is the text contract handed to glue layers.
type Response struct {
	RunID      string `json:"run_id,omitempty"`
	Status     Status `json:"status"`
	Text       string `json:"text"`
	DurationMs int64  `json:"duration_ms"`
}

// Format renders an outcome as the text returned to the caller. It always
// returns non-empty text.
func Format(o Outcome) string {
	if o.Kind == KindSuccess {
		if text := strings.TrimSpace(o.Text); text != "" {
			return text
		}
		return NoOutput
	}
	if strings.TrimSpace(o.Text) == "" {
		return unknownFault
	}
	return o.Text
}

// Response formats the outcome into its caller-facing form.
func (o Outcome) Response() Response {
	return Response{
		RunID:      o.RunID,
		Status:     o.Status(),
		Text:       Format(o),
		DurationMs: o.Duration.Milliseconds(),
	}
}
