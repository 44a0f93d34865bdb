// Package purchase orchestrates the payment flow: plan selection, the
// 5-minute payment window, screenshot intake and the operator decision.
package purchase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"premiumbot/core/logger"
	"premiumbot/core/telegram/format"
	"premiumbot/internal/catalog"
	"premiumbot/internal/expiry"
	"premiumbot/internal/i18n"
	"premiumbot/internal/qr"
	"premiumbot/internal/session"
	"log/slog"
)

var (
	// ErrUnauthorized marks a decision attempt by anyone but the operator.
	ErrUnauthorized = errors.New("purchase: unauthorized")
	// ErrAlreadyProcessed marks a duplicate decision on a settled session.
	ErrAlreadyProcessed = errors.New("purchase: already processed")
	// ErrUnknownPlan marks a selector not present in the catalog.
	ErrUnknownPlan = errors.New("purchase: unknown plan")
	// ErrComingSoon marks a plan that is listed but not yet purchasable.
	ErrComingSoon = errors.New("purchase: plan not yet available")
	// ErrNotInPaymentFlow marks a proof photo arriving with no open window.
	ErrNotInPaymentFlow = errors.New("purchase: no payment in progress")
	// ErrSessionLost marks payment state with no plan attached (store was
	// wiped, e.g. by a restart). Recoverable: the session is reset.
	ErrSessionLost = errors.New("purchase: session lost")
)

// Config carries the payment-flow policy knobs.
type Config struct {
	OperatorID     int64
	Window         time.Duration
	HardCutoff     bool
	SupportContact string
}

// Service drives per-user purchase sessions. All state lives in the Store;
// transitions are applied under the store lock, notifications are sent after
// the transition commits.
type Service struct {
	cfg     Config
	store   *session.Store
	sched   *expiry.Scheduler
	qr      qr.Renderer
	tr      Transport
	journal Journal
}

// NewService wires a Service and arms its expiry scheduler.
func NewService(cfg Config, store *session.Store, renderer qr.Renderer, tr Transport, j Journal) *Service {
	if cfg.Window <= 0 {
		cfg.Window = 5 * time.Minute
	}
	s := &Service{
		cfg:     cfg,
		store:   store,
		qr:      renderer,
		tr:      tr,
		journal: j,
	}
	s.sched = expiry.NewScheduler(s.HandleExpiry)
	return s
}

// Close stops the expiry scheduler.
func (s *Service) Close() {
	s.sched.Close()
}

// Store exposes the session store for read-only collaborators (sweeper, stats).
func (s *Service) Store() *session.Store { return s.store }

// Locale returns the user's locale, falling back to the default.
func (s *Service) Locale(userID int64) string {
	if l := s.store.Locale(userID); l != "" {
		return l
	}
	return i18n.DefaultLocale
}

// SetLocale records an explicit language choice.
func (s *Service) SetLocale(userID int64, locale string) {
	if !i18n.Supported(locale) {
		locale = i18n.DefaultLocale
	}
	s.store.SetLocale(userID, locale)
}

// SelectPlans opens the plan picker.
func (s *Service) SelectPlans(ctx context.Context, userID int64) error {
	err := s.store.Apply(userID, func(sess *session.Session) error {
		next, terr := session.Next(sess.State, session.EventSelectPlans)
		if terr != nil {
			return terr
		}
		sess.State = next
		sess.EnteredAt = time.Now()
		return nil
	})
	if err != nil {
		return err
	}

	lang := s.Locale(userID)
	rows := make([][]Button, 0, 4)
	for _, p := range catalog.All() {
		key := p.ID
		text := i18n.T(lang, planLabelKey(p))
		if p.ComingSoon {
			key = CBComingSoon
		}
		rows = append(rows, []Button{{Text: text, Key: key}})
	}
	rows = append(rows, []Button{{Text: "🔙 Cancel", Key: CBCancel}})

	return s.tr.SendTextButtons(ctx, userID, i18n.T(lang, "choose_plan"), rows...)
}

func planLabelKey(p catalog.Plan) string {
	switch p.ID {
	case catalog.Plan1Month:
		return "plan_1"
	case catalog.Plan3Months:
		return "plan_3"
	default:
		return "plan_6_soon"
	}
}

// ChoosePlan commits to a plan: regenerates the session version, opens a
// fresh payment window and sends the payment QR. Choosing again while a
// window is open silently supersedes it; the old timer dies on the version
// check.
func (s *Service) ChoosePlan(ctx context.Context, userID int64, planID string) error {
	plan, ok := catalog.Lookup(planID)
	if !ok {
		return ErrUnknownPlan
	}
	if plan.ComingSoon {
		return ErrComingSoon
	}

	version := uuid.NewString()
	windowEnds := time.Now().Add(s.cfg.Window)
	err := s.store.Apply(userID, func(sess *session.Session) error {
		next, terr := session.Next(sess.State, session.EventChoosePlan)
		if terr != nil {
			return terr
		}
		sess.State = next
		sess.PlanID = plan.ID
		sess.PlanName = plan.Name
		sess.Amount = plan.Amount
		sess.Version = version
		sess.ProofFileID = ""
		sess.WindowEnds = windowEnds
		sess.EnteredAt = time.Now()
		// Armed under the store lock: a concurrent reselect cannot replace
		// the newer timer with this one after losing the version race.
		s.sched.Schedule(userID, version, s.cfg.Window)
		return nil
	})
	if err != nil {
		return err
	}

	logger.L.LogAttrs(ctx, slog.LevelInfo, "purchase.window.opened",
		slog.Int64("user_id", userID),
		slog.String("plan", plan.ID),
		slog.Int("amount", plan.Amount),
		slog.String("version", version),
		slog.Int64("window_s", int64(s.cfg.Window/time.Second)),
	)

	png, err := s.qr.Render(plan.Name, plan.Amount)
	if err != nil {
		return fmt.Errorf("render payment qr: %w", err)
	}

	lang := s.Locale(userID)
	caption := i18n.T(lang, "payment_instr", plan.Name, plan.Amount) +
		"\n" + i18n.T(lang, "window_until", windowEnds.Format("15:04:05"))
	return s.tr.SendImage(ctx, userID, png, caption,
		[]Button{{Text: "📤 Upload Screenshot", Key: CBUploadNow}},
	)
}

// RemindUpload guides a user who sent something other than a photo while a
// payment window is open. Reports whether a flow was actually active; a user
// with no open window gets nothing, so state never changes either way.
func (s *Service) RemindUpload(ctx context.Context, userID int64) (bool, error) {
	st := s.store.Get(userID).State
	if st != session.StateAwaitingPayment && st != session.StateAwaitingScreenshot {
		return false, nil
	}
	return true, s.tr.SendText(ctx, userID, i18n.T(s.Locale(userID), "upload_prompt"))
}

// SignalUpload is the user explicitly asking to send the screenshot.
func (s *Service) SignalUpload(ctx context.Context, userID int64) error {
	err := s.store.Apply(userID, func(sess *session.Session) error {
		next, terr := session.Next(sess.State, session.EventSignalUpload)
		if terr != nil {
			return terr
		}
		sess.State = next
		sess.EnteredAt = time.Now()
		return nil
	})
	if err != nil {
		return err
	}
	return s.tr.SendText(ctx, userID, i18n.T(s.Locale(userID), "upload_prompt"))
}

// SubmitScreenshot processes a proof photo. Accepted in both awaiting states
// so a user who pays just as the window closes is not penalized. The photo
// is forwarded to the operator by its platform file reference together with
// approve/reject controls.
func (s *Service) SubmitScreenshot(ctx context.Context, userID int64, fileRef, displayName string) error {
	var (
		plan   string
		amount int
	)
	err := s.store.Apply(userID, func(sess *session.Session) error {
		if !session.InPaymentFlow(sess.State) || sess.State == session.StatePendingApproval {
			return ErrNotInPaymentFlow
		}
		if !sess.HasPlan() {
			// Store was wiped mid-flow. Never forward an incomplete
			// record to the operator.
			session.ResetSession(sess)
			return ErrSessionLost
		}
		next, terr := session.Next(sess.State, session.EventPhotoReceived)
		if terr != nil {
			return terr
		}
		sess.State = next
		sess.ProofFileID = fileRef
		sess.EnteredAt = time.Now()
		plan = sess.PlanName
		amount = sess.Amount
		return nil
	})

	lang := s.Locale(userID)
	if errors.Is(err, ErrSessionLost) {
		logger.L.LogAttrs(ctx, slog.LevelWarn, "purchase.session.lost",
			slog.Int64("user_id", userID),
		)
		if serr := s.tr.SendText(ctx, userID, i18n.T(lang, "session_expired")); serr != nil {
			logger.L.LogAttrs(ctx, slog.LevelWarn, "purchase.notify.failed",
				slog.Int64("user_id", userID),
				slog.String("err", serr.Error()),
			)
		}
		return ErrSessionLost
	}
	if err != nil {
		return err
	}

	if s.journal != nil {
		if jerr := s.journal.RecordSubmission(ctx, userID, plan, amount); jerr != nil {
			logger.L.LogAttrs(ctx, slog.LevelWarn, "purchase.journal.failed",
				slog.Int64("user_id", userID),
				slog.String("err", jerr.Error()),
			)
		}
	}

	if serr := s.tr.SendText(ctx, userID, i18n.T(lang, "screenshot_received")); serr != nil {
		logger.L.LogAttrs(ctx, slog.LevelWarn, "purchase.notify.failed",
			slog.Int64("user_id", userID),
			slog.String("err", serr.Error()),
		)
	}

	caption := operatorSummary(userID, displayName, plan, amount)
	return s.tr.SendFileRef(ctx, s.cfg.OperatorID, fileRef, caption,
		[]Button{
			{Text: "✅ Approve", Key: CBApprove, Payload: fmt.Sprintf("%d", userID)},
			{Text: "❌ Reject", Key: CBReject, Payload: fmt.Sprintf("%d", userID)},
		},
		[]Button{{Text: "📞 Contact User", Key: CBContact, Payload: fmt.Sprintf("%d", userID)}},
	)
}

func operatorSummary(userID int64, displayName, plan string, amount int) string {
	return fmt.Sprintf(
		"🔔 <b>NEW PAYMENT</b>\n\n👤 User: %s (ID: <code>%d</code>)\n📦 Plan: %s\n💰 Amount: ₹%d\n📅 Date: %s",
		format.EscapeHTML(displayName), userID, format.EscapeHTML(plan), amount,
		time.Now().Format("2006-01-02 15:04"),
	)
}

// HandleExpiry is the scheduler callback for an elapsed payment window. It
// acts only if the session version still matches the one captured at
// scheduling time and the state is still awaiting payment; anything else is
// a silent no-op (late firings after supersession or settlement).
func (s *Service) HandleExpiry(userID int64, version string) {
	var acted bool
	_ = s.store.Apply(userID, func(sess *session.Session) error {
		if sess.Version != version || sess.State != session.StateAwaitingPayment {
			return nil
		}
		if s.cfg.HardCutoff {
			session.ResetSession(sess)
		} else {
			sess.State = session.StateAwaitingScreenshot
			sess.EnteredAt = time.Now()
		}
		acted = true
		return nil
	})

	ctx := logger.Background()
	if !acted {
		logger.L.LogAttrs(ctx, slog.LevelDebug, "purchase.window.stale",
			slog.Int64("user_id", userID),
			slog.String("version", version),
		)
		return
	}

	logger.L.LogAttrs(ctx, slog.LevelInfo, "purchase.window.elapsed",
		slog.Int64("user_id", userID),
		slog.String("version", version),
	)

	// Transition already committed; a delivery failure is logged, not retried.
	if err := s.tr.SendText(ctx, userID, i18n.T(s.Locale(userID), "timer_ended")); err != nil {
		logger.L.LogAttrs(ctx, slog.LevelWarn, "purchase.notify.failed",
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
	}
}

// Decision is the outcome of an operator decision, used by the handler to
// annotate the operator's message.
type Decision struct {
	Approved  bool
	Tag       string
	NotifyErr error
}

// Decide applies an operator decision exactly once. The caller identity is
// checked against the configured operator. A second decision on the same
// submission returns ErrAlreadyProcessed with no side effects. The target
// session settles back to idle regardless of whether the user notification
// could be delivered; a delivery failure is reported in the Decision so the
// operator can be told.
func (s *Service) Decide(ctx context.Context, callerID int64, approve bool, targetUserID int64) (Decision, error) {
	if callerID != s.cfg.OperatorID {
		return Decision{}, ErrUnauthorized
	}

	err := s.store.Apply(targetUserID, func(sess *session.Session) error {
		if sess.State != session.StatePendingApproval {
			return ErrAlreadyProcessed
		}
		session.ResetSession(sess)
		return nil
	})
	if err != nil {
		return Decision{}, err
	}

	dec := Decision{Approved: approve, Tag: "❌ REJECTED"}
	msgKey := "rejected"
	decision := "rejected"
	if approve {
		dec.Tag = "✅ APPROVED"
		msgKey = "approved"
		decision = "approved"
	}

	logger.L.LogAttrs(ctx, slog.LevelInfo, "purchase.decided",
		slog.Int64("user_id", targetUserID),
		slog.String("decision", decision),
	)

	if s.journal != nil {
		if jerr := s.journal.RecordDecision(ctx, targetUserID, decision); jerr != nil {
			logger.L.LogAttrs(ctx, slog.LevelWarn, "purchase.journal.failed",
				slog.Int64("user_id", targetUserID),
				slog.String("err", jerr.Error()),
			)
		}
	}

	if nerr := s.tr.SendText(ctx, targetUserID, i18n.T(s.Locale(targetUserID), msgKey)); nerr != nil {
		logger.L.LogAttrs(ctx, slog.LevelWarn, "purchase.notify.failed",
			slog.Int64("user_id", targetUserID),
			slog.String("err", nerr.Error()),
		)
		dec.NotifyErr = nerr
	}

	return dec, nil
}

// Cancel aborts the flow and disarms the window timer. Locale survives.
func (s *Service) Cancel(ctx context.Context, userID int64) error {
	s.sched.Cancel(userID)
	return s.store.Apply(userID, func(sess *session.Session) error {
		session.ResetSession(sess)
		return nil
	})
}

// Status renders the user's current flow status in their locale.
func (s *Service) Status(userID int64) string {
	sess := s.store.Get(userID)
	lang := s.Locale(userID)

	var statusKey string
	plan := sess.PlanName
	amount := any(sess.Amount)
	switch sess.State {
	case session.StatePendingApproval:
		statusKey = "status_pending"
	case session.StateAwaitingPayment, session.StateAwaitingScreenshot:
		statusKey = "status_paying"
	default:
		statusKey = "status_free"
		plan = "None"
		amount = 0
	}
	text := i18n.T(lang, "status_msg", i18n.T(lang, statusKey), plan, amount)
	if sess.State == session.StateAwaitingPayment && !sess.WindowEnds.IsZero() {
		if left := time.Until(sess.WindowEnds); left > 0 {
			left = left.Round(time.Second)
			text += "\n" + i18n.T(lang, "window_left",
				int(left/time.Minute), int(left%time.Minute/time.Second))
		}
	}
	return text
}

// SupportText renders the support contact message for a user.
func (s *Service) SupportText(userID int64) string {
	return i18n.T(s.Locale(userID), "support_text", s.cfg.SupportContact, userID)
}

// Window exposes the configured payment window duration.
func (s *Service) Window() time.Duration { return s.cfg.Window }

// OperatorID exposes the configured operator identity.
func (s *Service) OperatorID() int64 { return s.cfg.OperatorID }
