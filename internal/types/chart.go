package types

// Figure is an opaque chart handle. The pipeline only passes it through;
// front-ends decide how to draw it.
type Figure struct {
	Kind   string  `json:"kind"` // "trend" or "box"
	Title  string  `json:"title"`
	XTitle string  `json:"x_title,omitempty"`
	YTitle string  `json:"y_title,omitempty"`
	Traces []Trace `json:"traces"`
}

// Trace is one series of a Figure.
type Trace struct {
	Name  string    `json:"name"`
	X     []string  `json:"x,omitempty"`
	Y     []float64 `json:"y"`
	Hover string    `json:"hover,omitempty"`
}
