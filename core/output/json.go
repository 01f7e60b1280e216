package output

import (
	"encoding/json"
	"io"
)

// JSONFormatter writes the report as JSON
type JSONFormatter struct {
	Indent string
}

// Format returns the format type
func (f *JSONFormatter) Format() Format {
	return FormatJSON
}

// Render produces output for the given report
func (f *JSONFormatter) Render(w io.Writer, report *Report) error {
	enc := json.NewEncoder(w)
	if f.Indent != "" {
		enc.SetIndent("", f.Indent)
	}
	return enc.Encode(report)
}
