package models

// UTM holds the campaign parameters persisted on first touch.
type UTM struct {
	Campaign string `json:"campaign,omitempty"`
	Medium   string `json:"medium,omitempty"`
	Content  string `json:"content,omitempty"`
}

// Identity is the browser-owned visitor identity. LeadID is created once
// and never regenerated; UserID is set at most once, on conversion.
type Identity struct {
	LeadID           string `json:"leadId"`
	UserID           string `json:"userId,omitempty"`
	SessionID        string `json:"sessionId"`
	TrafficSource    string `json:"trafficSource"`
	UTM              UTM    `json:"utm"`
	CreatedAt        string `json:"createdAt,omitempty"`
	SessionStartedAt string `json:"sessionStartedAt,omitempty"`
	SessionCount     int    `json:"sessionCount"`
	TestMode         bool   `json:"testMode"`
}
