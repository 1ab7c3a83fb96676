package models

// Event is one entry in the append-only analytics log: the standard
// envelope merged with event-specific fields, dataLayer style.
type Event map[string]interface{}

// Name returns the event name from the envelope, or "" if absent.
func (e Event) Name() string {
	if v, ok := e["event"].(string); ok {
		return v
	}
	return ""
}
