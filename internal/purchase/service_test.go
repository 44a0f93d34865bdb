package purchase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"premiumbot/internal/catalog"
	"premiumbot/internal/qr"
	"premiumbot/internal/session"
)

type sentMsg struct {
	chatID  int64
	text    string
	fileRef string
	hasPNG  bool
	rows    [][]Button
}

type fakeTransport struct {
	mu       sync.Mutex
	sent     []sentMsg
	failText map[int64]error
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{failText: make(map[int64]error)}
}

func (f *fakeTransport) SendText(_ context.Context, chatID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failText[chatID]; ok {
		return err
	}
	f.sent = append(f.sent, sentMsg{chatID: chatID, text: text})
	return nil
}

func (f *fakeTransport) SendTextButtons(_ context.Context, chatID int64, text string, rows ...[]Button) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMsg{chatID: chatID, text: text, rows: rows})
	return nil
}

func (f *fakeTransport) SendImage(_ context.Context, chatID int64, png []byte, caption string, rows ...[]Button) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMsg{chatID: chatID, text: caption, hasPNG: len(png) > 0, rows: rows})
	return nil
}

func (f *fakeTransport) SendFileRef(_ context.Context, chatID int64, fileRef, caption string, rows ...[]Button) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMsg{chatID: chatID, text: caption, fileRef: fileRef, rows: rows})
	return nil
}

func (f *fakeTransport) messages() []sentMsg {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]sentMsg, len(f.sent))
	copy(out, f.sent)
	return out
}

func (f *fakeTransport) textsTo(chatID int64) []string {
	var out []string
	for _, m := range f.messages() {
		if m.chatID == chatID {
			out = append(out, m.text)
		}
	}
	return out
}

const operatorID = int64(9000)

func newTestService(t *testing.T, opts ...func(*Config)) (*Service, *session.Store, *fakeTransport) {
	t.Helper()
	cfg := Config{
		OperatorID:     operatorID,
		Window:         time.Hour, // tests fire expiry manually unless overridden
		SupportContact: "@support",
	}
	for _, o := range opts {
		o(&cfg)
	}
	store := session.NewStore()
	tr := newFakeTransport()
	svc := NewService(cfg, store, qr.Renderer{UPIAddress: "test@upi"}, tr, nil)
	t.Cleanup(svc.Close)
	return svc, store, tr
}

func enterPendingApproval(t *testing.T, svc *Service, userID int64) string {
	t.Helper()
	require.NoError(t, svc.SelectPlans(context.Background(), userID))
	require.NoError(t, svc.ChoosePlan(context.Background(), userID, catalog.Plan1Month))
	version := svc.Store().Get(userID).Version
	require.NoError(t, svc.SubmitScreenshot(context.Background(), userID, "file-1", "Alice"))
	return version
}

func TestHappyPathToApproval(t *testing.T) {
	svc, store, tr := newTestService(t)
	ctx := context.Background()
	const user = int64(100)

	require.NoError(t, svc.SelectPlans(ctx, user))
	assert.Equal(t, session.StatePlanSelection, store.Get(user).State)

	require.NoError(t, svc.ChoosePlan(ctx, user, catalog.Plan1Month))
	sess := store.Get(user)
	assert.Equal(t, session.StateAwaitingPayment, sess.State)
	assert.NotEmpty(t, sess.Version)
	assert.Equal(t, "1 Month YouTube Premium", sess.PlanName)
	assert.Equal(t, 20, sess.Amount)

	require.NoError(t, svc.SubmitScreenshot(ctx, user, "photo-ref", "Alice"))
	assert.Equal(t, session.StatePendingApproval, store.Get(user).State)

	// Operator got the proof with decision controls.
	var opMsg *sentMsg
	msgs := tr.messages()
	for i := range msgs {
		if msgs[i].chatID == operatorID {
			opMsg = &msgs[i]
			break
		}
	}
	require.NotNil(t, opMsg, "operator must receive the proof")
	assert.Equal(t, "photo-ref", opMsg.fileRef)
	assert.Contains(t, opMsg.text, "NEW PAYMENT")
	assert.Contains(t, opMsg.text, "₹20")
	require.NotEmpty(t, opMsg.rows)
	assert.Equal(t, CBApprove, opMsg.rows[0][0].Key)
	assert.Equal(t, "100", opMsg.rows[0][0].Payload)

	dec, err := svc.Decide(ctx, operatorID, true, user)
	require.NoError(t, err)
	assert.True(t, dec.Approved)
	assert.NoError(t, dec.NotifyErr)
	assert.Equal(t, session.StateIdle, store.Get(user).State)

	texts := strings.Join(tr.textsTo(user), "\n")
	assert.Contains(t, texts, "APPROVED")
}

func TestVersionGuardOnSupersededPlan(t *testing.T) {
	svc, store, tr := newTestService(t)
	ctx := context.Background()
	const user = int64(200)

	require.NoError(t, svc.ChoosePlan(ctx, user, catalog.Plan1Month))
	oldVersion := store.Get(user).Version

	require.NoError(t, svc.ChoosePlan(ctx, user, catalog.Plan3Months))
	newVersion := store.Get(user).Version
	require.NotEqual(t, oldVersion, newVersion)

	before := len(tr.messages())
	svc.HandleExpiry(user, oldVersion)

	sess := store.Get(user)
	assert.Equal(t, session.StateAwaitingPayment, sess.State, "stale timer must not mutate")
	assert.Equal(t, "3 Months YouTube Premium", sess.PlanName)
	assert.Len(t, tr.messages(), before, "stale timer must not notify")
}

func TestExpiryMovesToAwaitingScreenshot(t *testing.T) {
	svc, store, tr := newTestService(t)
	ctx := context.Background()
	const user = int64(300)

	require.NoError(t, svc.ChoosePlan(ctx, user, catalog.Plan1Month))
	version := store.Get(user).Version

	svc.HandleExpiry(user, version)

	assert.Equal(t, session.StateAwaitingScreenshot, store.Get(user).State)
	texts := strings.Join(tr.textsTo(user), "\n")
	assert.Contains(t, texts, "Time Expired")

	// Permissive policy: a late screenshot is still accepted.
	require.NoError(t, svc.SubmitScreenshot(ctx, user, "late-ref", "Bob"))
	assert.Equal(t, session.StatePendingApproval, store.Get(user).State)
}

func TestExpiryHardCutoffResetsToIdle(t *testing.T) {
	svc, store, _ := newTestService(t, func(c *Config) { c.HardCutoff = true })
	ctx := context.Background()
	const user = int64(301)

	require.NoError(t, svc.ChoosePlan(ctx, user, catalog.Plan1Month))
	version := store.Get(user).Version

	svc.HandleExpiry(user, version)

	sess := store.Get(user)
	assert.Equal(t, session.StateIdle, sess.State)
	assert.Empty(t, sess.PlanName)

	err := svc.SubmitScreenshot(ctx, user, "ref", "Bob")
	assert.ErrorIs(t, err, ErrNotInPaymentFlow)
}

func TestExpiryAfterScreenshotIsNoop(t *testing.T) {
	svc, store, tr := newTestService(t)
	const user = int64(302)

	version := enterPendingApproval(t, svc, user)

	before := len(tr.messages())
	svc.HandleExpiry(user, version)

	assert.Equal(t, session.StatePendingApproval, store.Get(user).State,
		"expiry must not act once the state left awaiting_payment")
	assert.Len(t, tr.messages(), before)
}

func TestScheduledExpiryFires(t *testing.T) {
	svc, store, tr := newTestService(t, func(c *Config) { c.Window = 20 * time.Millisecond })
	ctx := context.Background()
	const user = int64(303)

	require.NoError(t, svc.ChoosePlan(ctx, user, catalog.Plan1Month))

	require.Eventually(t, func() bool {
		return store.Get(user).State == session.StateAwaitingScreenshot
	}, 2*time.Second, 5*time.Millisecond)

	texts := strings.Join(tr.textsTo(user), "\n")
	assert.Contains(t, texts, "Time Expired")
}

func TestDecideIsIdempotent(t *testing.T) {
	svc, store, tr := newTestService(t)
	ctx := context.Background()
	const user = int64(400)

	enterPendingApproval(t, svc, user)

	_, err := svc.Decide(ctx, operatorID, true, user)
	require.NoError(t, err)
	notified := len(tr.textsTo(user))

	_, err = svc.Decide(ctx, operatorID, false, user)
	assert.ErrorIs(t, err, ErrAlreadyProcessed)
	assert.Len(t, tr.textsTo(user), notified, "duplicate decision must not notify again")
	assert.Equal(t, session.StateIdle, store.Get(user).State)
}

func TestDecideUnauthorized(t *testing.T) {
	svc, store, tr := newTestService(t)
	ctx := context.Background()
	const user = int64(401)

	enterPendingApproval(t, svc, user)
	before := len(tr.messages())

	_, err := svc.Decide(ctx, user, true, user)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, session.StatePendingApproval, store.Get(user).State, "no state change")
	assert.Len(t, tr.messages(), before, "no side effects")
}

func TestDecideReportsNotifyFailure(t *testing.T) {
	svc, store, tr := newTestService(t)
	ctx := context.Background()
	const user = int64(402)

	enterPendingApproval(t, svc, user)
	tr.mu.Lock()
	tr.failText[user] = errors.New("forbidden: user blocked the bot")
	tr.mu.Unlock()

	dec, err := svc.Decide(ctx, operatorID, false, user)
	require.NoError(t, err, "decision itself must succeed")
	assert.Error(t, dec.NotifyErr)
	assert.Equal(t, session.StateIdle, store.Get(user).State,
		"session settles regardless of delivery")
}

func TestDataLossResetsAndInformsUser(t *testing.T) {
	svc, store, tr := newTestService(t)
	ctx := context.Background()
	const user = int64(500)

	// Simulate a wiped store: payment state without plan fields.
	require.NoError(t, store.Apply(user, func(s *session.Session) error {
		s.State = session.StateAwaitingScreenshot
		s.Locale = "hi"
		return nil
	}))

	err := svc.SubmitScreenshot(ctx, user, "ref", "Carol")
	assert.ErrorIs(t, err, ErrSessionLost)

	sess := store.Get(user)
	assert.Equal(t, session.StateIdle, sess.State)
	assert.Equal(t, "hi", sess.Locale, "locale survives the reset")

	for _, m := range tr.messages() {
		assert.NotEqual(t, operatorID, m.chatID, "incomplete record must never reach the operator")
	}
	require.NotEmpty(t, tr.textsTo(user))
}

func TestScreenshotOutsideFlowRejected(t *testing.T) {
	svc, _, tr := newTestService(t)
	err := svc.SubmitScreenshot(context.Background(), 600, "ref", "Dave")
	assert.ErrorIs(t, err, ErrNotInPaymentFlow)
	assert.Empty(t, tr.messages())
}

func TestCancelPreservesLocale(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	const user = int64(700)

	svc.SetLocale(user, "bn")
	require.NoError(t, svc.ChoosePlan(ctx, user, catalog.Plan3Months))
	require.NoError(t, svc.Cancel(ctx, user))

	sess := store.Get(user)
	assert.Equal(t, session.StateIdle, sess.State)
	assert.Empty(t, sess.Version)
	assert.Equal(t, "bn", sess.Locale)
}

func TestChoosePlanValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	err := svc.ChoosePlan(ctx, 800, "plan_lifetime_1")
	assert.ErrorIs(t, err, ErrUnknownPlan)

	err = svc.ChoosePlan(ctx, 800, catalog.Plan6Months)
	assert.ErrorIs(t, err, ErrComingSoon)
}

func TestSetLocaleUnsupportedFallsBack(t *testing.T) {
	svc, _, _ := newTestService(t)
	svc.SetLocale(900, "xx")
	assert.Equal(t, "en", svc.Locale(900))
}

func TestStatusReflectsFlow(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	const user = int64(901)

	assert.Contains(t, svc.Status(user), "Free User")

	require.NoError(t, svc.ChoosePlan(ctx, user, catalog.Plan1Month))
	assert.Contains(t, svc.Status(user), "Payment in Progress")

	require.NoError(t, svc.SubmitScreenshot(ctx, user, "ref", "Eve"))
	assert.Contains(t, svc.Status(user), "Pending Approval")
}

func TestWindowDeadlineRecorded(t *testing.T) {
	svc, store, tr := newTestService(t)
	ctx := context.Background()
	const user = int64(903)

	require.NoError(t, svc.ChoosePlan(ctx, user, catalog.Plan1Month))
	sess := store.Get(user)
	assert.WithinDuration(t, time.Now().Add(svc.Window()), sess.WindowEnds, 2*time.Second)

	// The QR caption names the deadline, /status the remaining window.
	msgs := tr.messages()
	require.NotEmpty(t, msgs)
	assert.Contains(t, msgs[len(msgs)-1].text, sess.WindowEnds.Format("15:04:05"))
	assert.Contains(t, svc.Status(user), "Payment window")

	require.NoError(t, svc.Cancel(ctx, user))
	assert.True(t, store.Get(user).WindowEnds.IsZero(), "cancel clears the deadline")
	assert.NotContains(t, svc.Status(user), "Payment window")
}

func TestProofFileIDRecorded(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	const user = int64(904)

	require.NoError(t, svc.ChoosePlan(ctx, user, catalog.Plan1Month))
	assert.Empty(t, store.Get(user).ProofFileID)

	require.NoError(t, svc.SubmitScreenshot(ctx, user, "proof-7", "Frank"))
	assert.Equal(t, "proof-7", store.Get(user).ProofFileID)

	_, err := svc.Decide(ctx, operatorID, true, user)
	require.NoError(t, err)
	assert.Empty(t, store.Get(user).ProofFileID, "decision clears the proof reference")
}

func TestRemindUploadOnlyDuringFlow(t *testing.T) {
	svc, store, tr := newTestService(t)
	ctx := context.Background()
	const user = int64(905)

	active, err := svc.RemindUpload(ctx, user)
	require.NoError(t, err)
	assert.False(t, active, "idle user gets no nudge")
	assert.Empty(t, tr.messages())

	require.NoError(t, svc.ChoosePlan(ctx, user, catalog.Plan1Month))
	before := len(tr.textsTo(user))
	active, err = svc.RemindUpload(ctx, user)
	require.NoError(t, err)
	assert.True(t, active)
	texts := tr.textsTo(user)
	require.Len(t, texts, before+1)
	assert.Contains(t, texts[len(texts)-1], "Upload Payment Screenshot")
	assert.Equal(t, session.StateAwaitingPayment, store.Get(user).State, "nudge never mutates state")

	require.NoError(t, svc.SubmitScreenshot(ctx, user, "ref", "Grace"))
	active, err = svc.RemindUpload(ctx, user)
	require.NoError(t, err)
	assert.False(t, active, "no nudge once pending approval")
}

func TestSignalUploadOutsideFlow(t *testing.T) {
	svc, _, tr := newTestService(t)

	err := svc.SignalUpload(context.Background(), 906)
	var invalid *session.ErrInvalidTransition
	assert.ErrorAs(t, err, &invalid)
	assert.Empty(t, tr.messages())
}

func TestConcurrentReselectKeepsWindowArmed(t *testing.T) {
	svc, store, _ := newTestService(t, func(c *Config) { c.Window = 30 * time.Millisecond })
	ctx := context.Background()
	const user = int64(907)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = svc.ChoosePlan(ctx, user, catalog.Plan1Month)
		}()
	}
	wg.Wait()

	// Whatever the interleaving, the surviving timer must belong to the live
	// session version, so the window still elapses.
	require.Eventually(t, func() bool {
		return store.Get(user).State == session.StateAwaitingScreenshot
	}, 2*time.Second, 5*time.Millisecond)
}

func TestDecisionMessageUsesUserLocale(t *testing.T) {
	svc, _, tr := newTestService(t)
	ctx := context.Background()
	const user = int64(902)

	svc.SetLocale(user, "hi")
	enterPendingApproval(t, svc, user)

	_, err := svc.Decide(ctx, operatorID, true, user)
	require.NoError(t, err)

	texts := strings.Join(tr.textsTo(user), "\n")
	assert.Contains(t, texts, "स्वीकृत")
}
