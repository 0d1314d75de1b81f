package types

// Message is one turn of a narrator conversation.
type Message struct {
	Role    string `json:"role"` // user or assistant
	Content string `json:"content"`
}

// Report is one assembled daily report, ready for delivery.
type Report struct {
	Date     string `json:"date"`
	Text     string `json:"text"`
	ChartPNG []byte `json:"-"`
	// Narrated is false when Text came from the deterministic fallback
	// template instead of the narrator service.
	Narrated bool    `json:"narrated"`
	Savings  float64 `json:"savings"`
}
