package vibe

import (
	"errors"
	"strings"
	"unicode/utf8"
)

const maxSituationLen = 80

var ErrInvalidSituation = errors.New("situation must be 1-80 characters")

type SituationGroup struct {
	Category string   `json:"category"`
	Items    []string `json:"items"`
}

var situations = []SituationGroup{
	{Category: "Social", Items: []string{"Night Out", "House Party", "Brunch", "Wedding Guest"}},
	{Category: "Professional", Items: []string{"Job Interview", "Office Day", "Video Call", "Networking Event"}},
	{Category: "Dating", Items: []string{"First Date", "Dating App Pic", "Dinner Date"}},
	{Category: "Content", Items: []string{"Instagram Post", "Profile Picture", "TikTok"}},
}

func Situations() []SituationGroup {
	out := make([]SituationGroup, len(situations))
	for i, g := range situations {
		out[i] = SituationGroup{Category: g.Category, Items: append([]string{}, g.Items...)}
	}
	return out
}

// NormalizeSituation trims the label and enforces its length. Labels outside
// the catalog are allowed.
func NormalizeSituation(label string) (string, error) {
	s := strings.TrimSpace(label)
	if s == "" || utf8.RuneCountInString(s) > maxSituationLen {
		return "", ErrInvalidSituation
	}
	return s, nil
}
