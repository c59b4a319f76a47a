package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kotche/femhealth/internal/model"
)

func TestScore_AllYesCounts(t *testing.T) {
	want := map[int]Tier{
		0: TierLow,
		1: TierLow,
		2: TierLow,
		3: TierModerate,
		4: TierModerate,
		5: TierHigh,
		6: TierHigh,
		7: TierHigh,
	}

	require.Len(t, Questions, 7)
	for yes := 0; yes <= len(Questions); yes++ {
		got := Score(yes)
		assert.Equal(t, want[yes], got, "yes=%d", yes)
		assert.True(t, got.Valid())
	}
}

func TestTier_Suggestion(t *testing.T) {
	assert.Equal(t, "doctors", TierHigh.Suggestion())
	assert.Equal(t, "fun", TierModerate.Suggestion())
	assert.Equal(t, "fun", TierLow.Suggestion())
	assert.Contains(t, TierHigh.Message(), "clinical consultation")
	assert.False(t, Tier("severe").Valid())
}

func TestState_WalkThrough(t *testing.T) {
	answers := []bool{true, false, true, true, false, true, true}

	var s State
	for i, a := range answers {
		q, ok := s.Current()
		require.True(t, ok)
		assert.Equal(t, i+1, q.ID)

		var err error
		s, err = s.Answer(a)
		require.NoError(t, err)
	}

	assert.True(t, s.Finished)
	assert.Equal(t, 5, s.Yes)
	assert.Equal(t, TierHigh, s.Tier())

	_, ok := s.Current()
	assert.False(t, ok)

	_, err := s.Answer(true)
	assert.ErrorIs(t, err, model.ErrQuizFinished)
}

func TestState_Reset(t *testing.T) {
	s := State{Index: 6, Yes: 4, Finished: true}
	s = s.Reset()

	q, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, 1, q.ID)
	assert.Zero(t, s.Yes)
}
