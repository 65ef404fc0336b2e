package report

import (
	"encoding/json"
	"io"
)

// JSONGenerator renders a Report as indented JSON.
type JSONGenerator struct {
	Indent bool
}

// Generate writes report to w as JSON.
func (g *JSONGenerator) Generate(report *Report, w io.Writer) error {
	enc := json.NewEncoder(w)
	if g.Indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(report)
}

// GenerateBytes renders report as a JSON byte slice.
func (g *JSONGenerator) GenerateBytes(report *Report) ([]byte, error) {
	if g.Indent {
		return json.MarshalIndent(report, "", "  ")
	}
	return json.Marshal(report)
}
