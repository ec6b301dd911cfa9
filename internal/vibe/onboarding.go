package vibe

import (
	"errors"
	"fmt"
	"math"
)

type QuestionType string

const (
	QuestionSelect QuestionType = "select"
	QuestionSlider QuestionType = "slider"
	QuestionToggle QuestionType = "toggle"
)

var (
	ErrUnknownQuestion = errors.New("unknown onboarding question")
	ErrInvalidAnswer   = errors.New("invalid onboarding answer")
)

type Question struct {
	ID       string       `json:"id"`
	Question string       `json:"question"`
	Type     QuestionType `json:"type"`
	Options  []string     `json:"options,omitempty"`
	Min      float64      `json:"min,omitempty"`
	Max      float64      `json:"max,omitempty"`
	Step     float64      `json:"step,omitempty"`
}

var questions = []Question{
	{
		ID:       "goal",
		Question: "What are you trying to level up?",
		Type:     QuestionSelect,
		Options:  []string{"Dating profile", "Work presence", "Daily outfits", "Content & socials"},
	},
	{
		ID:       "style",
		Question: "How would you describe your style?",
		Type:     QuestionSelect,
		Options:  []string{"Minimal", "Streetwear", "Classic", "Bold", "Still figuring it out"},
	},
	{
		ID:       "confidence",
		Question: "How confident do you feel in photos?",
		Type:     QuestionSlider,
		Min:      1,
		Max:      10,
		Step:     1,
	},
	{
		ID:       "notifications",
		Question: "Want a daily reminder to keep your streak alive?",
		Type:     QuestionToggle,
	},
}

// Questions returns the onboarding questionnaire in order.
func Questions() []Question {
	out := make([]Question, len(questions))
	copy(out, questions)
	return out
}

func QuestionAt(i int) (Question, bool) {
	if i < 0 || i >= len(questions) {
		return Question{}, false
	}
	return questions[i], true
}

// ValidateAnswer checks value against the question type and returns it in
// canonical form: string for select, float64 for slider, bool for toggle.
func ValidateAnswer(q Question, value interface{}) (interface{}, error) {
	switch q.Type {
	case QuestionSelect:
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s expects one of the options", ErrInvalidAnswer, q.ID)
		}
		for _, opt := range q.Options {
			if opt == s {
				return s, nil
			}
		}
		return nil, fmt.Errorf("%w: %q is not an option of %s", ErrInvalidAnswer, s, q.ID)
	case QuestionSlider:
		f, ok := toFloat(value)
		if !ok || f < q.Min || f > q.Max {
			return nil, fmt.Errorf("%w: %s expects a number between %g and %g", ErrInvalidAnswer, q.ID, q.Min, q.Max)
		}
		if q.Step > 0 {
			steps := (f - q.Min) / q.Step
			if math.Abs(steps-math.Round(steps)) > 1e-9 {
				return nil, fmt.Errorf("%w: %s moves in steps of %g", ErrInvalidAnswer, q.ID, q.Step)
			}
		}
		return f, nil
	case QuestionToggle:
		b, ok := value.(bool)
		if !ok {
			return nil, fmt.Errorf("%w: %s expects true or false", ErrInvalidAnswer, q.ID)
		}
		return b, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownQuestion, q.ID)
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
