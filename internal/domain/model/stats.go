package model

// CardStats is an aggregate snapshot of the card table, used by the
// periodic stats sweep and exported as gauges.
type CardStats struct {
	Total     int
	Activated int
	Exhausted int
}
