package models

// Point is one vertex of an OCR bounding polygon
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Fragment is one recognized piece of text as reported by the OCR engine
type Fragment struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Polygon    []Point `json:"polygon,omitempty"`
}

// ExtractRequest is the body accepted by the extraction endpoints.
// Either Tokens or Fragments must be set; Vendor is detected when empty.
type ExtractRequest struct {
	Vendor    Vendor     `json:"vendor,omitempty"`
	Tokens    []string   `json:"tokens,omitempty"`
	Fragments []Fragment `json:"fragments,omitempty"`
}

// Texts returns the token texts in reading order
func (r *ExtractRequest) Texts() []string {
	if len(r.Fragments) == 0 {
		return r.Tokens
	}
	texts := make([]string, len(r.Fragments))
	for i, f := range r.Fragments {
		texts[i] = f.Text
	}
	return texts
}
