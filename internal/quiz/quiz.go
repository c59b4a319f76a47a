package quiz

import (
	"github.com/kotche/femhealth/internal/model"
)

type Question struct {
	ID   int
	Text string
}

var Questions = []Question{
	{ID: 1, Text: "Do you experience brownish discharge before your cycle starts?"},
	{ID: 2, Text: "Are your menstrual periods generally regular (every 21-35 days)?"},
	{ID: 3, Text: "Do you experience severe, debilitating pain during your period?"},
	{ID: 4, Text: "Do you notice extreme bloating or digestive issues during your cycle?"},
	{ID: 5, Text: "Do you feel unusually lethargic, fatigued, or 'brain fogged'?"},
	{ID: 6, Text: "Have you noticed any sudden, unexplained weight changes recently?"},
	{ID: 7, Text: "Do you experience significant mood swings or emotional sensitivity?"},
}

type Tier string

const (
	TierLow      Tier = "low"
	TierModerate Tier = "moderate"
	TierHigh     Tier = "high"
)

func (t Tier) Valid() bool {
	switch t {
	case TierLow, TierModerate, TierHigh:
		return true
	}
	return false
}

// Message is the report text shown for the tier.
func (t Tier) Message() string {
	switch t {
	case TierHigh:
		return "Your symptoms suggest you might benefit from a clinical consultation to rule out any underlying hormonal imbalances."
	case TierModerate:
		return "You're experiencing some standard symptoms. Monitoring your diet and prioritizing rest could help improve your comfort."
	default:
		return "Your health profile looks great! Keep maintaining your current wellness routine."
	}
}

// Suggestion names the page offered after the report: specialists for the
// high tier, the fun zone otherwise.
func (t Tier) Suggestion() string {
	if t == TierHigh {
		return "doctors"
	}
	return "fun"
}

// Score maps a yes count to its tier: above 4 is high, above 2 moderate.
func Score(yes int) Tier {
	switch {
	case yes > 4:
		return TierHigh
	case yes > 2:
		return TierModerate
	default:
		return TierLow
	}
}

// State is one user's progress through the questions.
type State struct {
	Index    int
	Yes      int
	Finished bool
}

// Current returns the question awaiting an answer.
func (s State) Current() (Question, bool) {
	if s.Finished || s.Index >= len(Questions) {
		return Question{}, false
	}
	return Questions[s.Index], true
}

// Answer records one answer and advances.
func (s State) Answer(yes bool) (State, error) {
	if s.Finished {
		return s, model.ErrQuizFinished
	}
	if yes {
		s.Yes++
	}
	if s.Index < len(Questions)-1 {
		s.Index++
	} else {
		s.Finished = true
	}
	return s, nil
}

// Tier is only meaningful once Finished.
func (s State) Tier() Tier {
	return Score(s.Yes)
}

// Reset returns a fresh state for retaking the quiz.
func (s State) Reset() State {
	return State{}
}
