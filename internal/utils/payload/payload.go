package payload

import (
	"encoding/json"
	"fmt"
)

// Actions carried by quick-reply and postback payloads.
const (
	ActionSelectGender     = "select_gender"
	ActionSelectPreference = "select_preference"
	ActionRateCouple       = "rate_couple"
	ActionViewMoreCouples  = "view_more_couples"
	ActionShowMatches      = "show_matches"
)

// Postback is the opaque token attached to quick replies and buttons.
// The platform echoes it back verbatim on selection.
type Postback struct {
	Action     string `json:"action"`
	Gender     string `json:"gender,omitempty"`
	Preference string `json:"preference,omitempty"`
	Person1ID  string `json:"person1_id,omitempty"`
	Person2ID  string `json:"person2_id,omitempty"`
	Rating     bool   `json:"rating,omitempty"`
}

// Encode converts a Postback into its wire string.
func Encode(p Postback) string {
	b, _ := json.Marshal(p)
	return string(b)
}

// Decode parses an echoed payload string back into a Postback.
func Decode(raw string) (Postback, error) {
	var p Postback
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return Postback{}, fmt.Errorf("invalid postback payload: %w", err)
	}
	if p.Action == "" {
		return Postback{}, fmt.Errorf("postback payload missing action")
	}
	return p, nil
}
