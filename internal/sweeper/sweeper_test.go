package sweeper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"premiumbot/internal/session"
)

func seed(t *testing.T, st *session.Store, userID int64, state session.State, age time.Duration) {
	t.Helper()
	require.NoError(t, st.Apply(userID, func(s *session.Session) error {
		s.State = state
		s.Locale = "hi"
		s.EnteredAt = time.Now().Add(-age)
		return nil
	}))
}

func TestSweepResetsStaleFlows(t *testing.T) {
	st := session.NewStore()
	sw := New(st, Options{Interval: time.Hour, MaxIdle: 30 * time.Minute})

	seed(t, st, 1, session.StateAwaitingPayment, time.Hour)     // stale
	seed(t, st, 2, session.StatePlanSelection, time.Minute)     // fresh
	seed(t, st, 3, session.StatePendingApproval, 2*time.Hour)   // operator-owned
	seed(t, st, 4, session.StateAwaitingScreenshot, 45*time.Minute)

	sw.Sweep()

	assert.Equal(t, session.StateIdle, st.Get(1).State)
	assert.Equal(t, session.StatePlanSelection, st.Get(2).State)
	assert.Equal(t, session.StatePendingApproval, st.Get(3).State, "pending approval is never swept")
	assert.Equal(t, session.StateIdle, st.Get(4).State)

	assert.Equal(t, "hi", st.Get(1).Locale, "locale survives sweep")
}

func TestSweepIgnoresIdle(t *testing.T) {
	st := session.NewStore()
	sw := New(st, Options{MaxIdle: time.Minute})
	seed(t, st, 9, session.StateIdle, time.Hour)

	sw.Sweep()
	assert.Equal(t, 1, st.Len())
}
