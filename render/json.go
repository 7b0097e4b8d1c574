package render

import (
	"encoding/json"
	"io"

	"github.com/revelaction/phascan/pipeline"
)

// JSONRenderer writes reports as JSON lines to a writer.
type JSONRenderer struct {
	W io.Writer
}

// NewJSONRenderer creates a JSONRenderer writing to w.
func NewJSONRenderer(w io.Writer) *JSONRenderer {
	return &JSONRenderer{W: w}
}

// Report writes one report as a single JSON line.
func (r *JSONRenderer) Report(rp pipeline.Report) error {
	return json.NewEncoder(r.W).Encode(rp)
}

// Render serializes any value as JSON.
func (r *JSONRenderer) Render(v any) error {
	return json.NewEncoder(r.W).Encode(v)
}

// compile-time interface check
var _ ReportRenderer = (*JSONRenderer)(nil)
