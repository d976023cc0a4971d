package grid

import "time"

// EventSpan locates the extreme or triggering event of one cell on the time axis.
// End is inclusive.
type EventSpan struct {
	Start     int        `json:"start"`
	End       int        `json:"end"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}

// NewEventSpan attaches dates when a time axis is available.
func NewEventSpan(start, end int, times []time.Time) *EventSpan {
	span := &EventSpan{Start: start, End: end}
	if start >= 0 && end < len(times) {
		s, e := times[start], times[end]
		span.StartDate, span.EndDate = &s, &e
	}
	return span
}

// Result is a kernel output reduced over time: one value per cell, plus an
// optional event span per cell when event tracking was requested.
type Result struct {
	Values []float64    `json:"values"`
	Events []*EventSpan `json:"events,omitempty"`
}

// NewResult allocates a result prefilled with the fill value.
func NewResult(cells int, fill float64, trackEvents bool) Result {
	r := Result{Values: make([]float64, cells)}
	for c := range r.Values {
		r.Values[c] = fill
	}
	if trackEvents {
		r.Events = make([]*EventSpan, cells)
	}
	return r
}
