package request

type ContextKey uint8

const (
	RoundTripName ContextKey = iota
	StartTime
	UID
)
