package profile

import "time"

// MaxPastEmotions bounds the rolling list of recently detected emotion tags.
const MaxPastEmotions = 10

// Profile tracks per-user personalization data for the wellness companion.
type Profile struct {
	UserID       string    `json:"userId"`
	PastEmotions []string  `json:"pastEmotions"`
	LastActivity time.Time `json:"lastActivity"`
}

// AppendEmotions merges newly detected emotion tags into the rolling list,
// keeping only the most recent MaxPastEmotions entries.
func (p *Profile) AppendEmotions(tags []string) {
	if len(tags) == 0 {
		return
	}
	merged := append(append([]string(nil), p.PastEmotions...), tags...)
	if len(merged) > MaxPastEmotions {
		merged = merged[len(merged)-MaxPastEmotions:]
	}
	p.PastEmotions = merged
}
