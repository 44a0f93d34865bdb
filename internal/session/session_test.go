package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetReturnsIdleForUnknownUser(t *testing.T) {
	st := NewStore()
	s := st.Get(42)
	assert.Equal(t, int64(42), s.UserID)
	assert.Equal(t, StateIdle, s.State)
	assert.Equal(t, 0, st.Len(), "Get must not persist a session")
}

func TestApplyCreatesAndMutates(t *testing.T) {
	st := NewStore()
	err := st.Apply(1, func(s *Session) error {
		s.State = StateAwaitingPayment
		s.PlanName = "1 Month YouTube Premium"
		s.Amount = 20
		s.Version = "v1"
		return nil
	})
	require.NoError(t, err)

	got := st.Get(1)
	assert.Equal(t, StateAwaitingPayment, got.State)
	assert.True(t, got.HasPlan())
	assert.Equal(t, 1, st.Len())
}

func TestResetPreservesLocale(t *testing.T) {
	st := NewStore()
	st.SetLocale(7, "hi")
	_ = st.Apply(7, func(s *Session) error {
		s.State = StatePendingApproval
		s.PlanName = "3 Months YouTube Premium"
		s.Amount = 55
		s.Version = "v9"
		return nil
	})

	st.Reset(7)

	got := st.Get(7)
	assert.Equal(t, StateIdle, got.State)
	assert.Empty(t, got.PlanName)
	assert.Zero(t, got.Amount)
	assert.Empty(t, got.Version)
	assert.Equal(t, "hi", got.Locale, "locale must survive reset")
}

func TestResetClearsPaymentEvidence(t *testing.T) {
	st := NewStore()
	_ = st.Apply(8, func(s *Session) error {
		s.State = StatePendingApproval
		s.ProofFileID = "file-9"
		s.WindowEnds = time.Now().Add(time.Minute)
		s.Locale = "bn"
		return nil
	})

	st.Reset(8)

	got := st.Get(8)
	assert.Empty(t, got.ProofFileID)
	assert.True(t, got.WindowEnds.IsZero())
	assert.Equal(t, "bn", got.Locale)
}

func TestGetReturnsCopy(t *testing.T) {
	st := NewStore()
	_ = st.Apply(3, func(s *Session) error {
		s.State = StateAwaitingPayment
		return nil
	})
	got := st.Get(3)
	got.State = StateIdle
	assert.Equal(t, StateAwaitingPayment, st.Get(3).State)
}

func TestConcurrentApply(t *testing.T) {
	st := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int64) {
			defer wg.Done()
			_ = st.Apply(n%5, func(s *Session) error {
				s.Amount++
				return nil
			})
		}(int64(i))
	}
	wg.Wait()

	total := 0
	st.Range(func(s Session) bool {
		total += s.Amount
		return true
	})
	assert.Equal(t, 50, total)
	assert.Equal(t, 5, st.Len())
}

func TestLocaleUnsetByDefault(t *testing.T) {
	st := NewStore()
	assert.Empty(t, st.Locale(99))
	st.SetLocale(99, "bn")
	assert.Equal(t, "bn", st.Locale(99))
}
