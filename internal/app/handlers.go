package app

import (
	"errors"
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v4"

	"premiumbot/core/telegram/format"
	tghelpers "premiumbot/core/telegram/helpers"
	"premiumbot/internal/i18n"
	"premiumbot/internal/purchase"
)

func (a *App) cmdStart(c tele.Context) error {
	userID := c.Sender().ID
	lang := a.store.Locale(userID)

	// First contact: ask for a language before anything else.
	if lang == "" {
		return tghelpers.SendHTML(c,
			"🌐 <b>Select Language / भाषा चुनें / ভাষা নির্বাচন করুন</b>",
			languagePicker(),
		)
	}

	a.store.Reset(userID)
	name := format.EscapeHTML(c.Sender().FirstName)
	return tghelpers.SendHTML(c, i18n.T(lang, "welcome", name), mainMenu(lang))
}

func (a *App) cmdHelp(c tele.Context) error {
	return tghelpers.SendHTML(c, i18n.T(a.svc.Locale(c.Sender().ID), "help_text"))
}

func (a *App) cmdStatus(c tele.Context) error {
	user := c.Sender()
	name := format.EscapeHTML(format.DisplayName(user.FirstName, user.LastName))
	text := fmt.Sprintf("👤 <b>User:</b> %s\n%s", name, a.svc.Status(user.ID))
	return tghelpers.SendHTML(c, text)
}

func (a *App) cmdSupport(c tele.Context) error {
	return tghelpers.SendHTML(c, a.svc.SupportText(c.Sender().ID))
}

func (a *App) cmdCancel(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	if err := a.svc.Cancel(ctx, c.Sender().ID); err != nil {
		return err
	}
	return tghelpers.SendHTML(c, "❌ Cancelled")
}

func (a *App) cmdAdmin(c tele.Context) error {
	return tghelpers.SendHTML(c,
		"👨‍💼 <b>Admin Dashboard</b>\n\nBot is running and listening for payments.")
}

func (a *App) cmdPending(c tele.Context) error {
	if a.journal == nil {
		return tghelpers.SendHTML(c, "📭 Journal disabled: no database configured.")
	}
	rows, err := a.journal.Pending(tghelpers.BuildContext(c))
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return tghelpers.SendHTML(c, "📭 No pending submissions.")
	}

	var b strings.Builder
	b.WriteString("⏳ <b>Pending Submissions</b>\n")
	for _, r := range rows {
		fmt.Fprintf(&b, "\n👤 <code>%d</code> — %s (₹%d) at %s",
			r.UserID, format.EscapeHTML(r.Plan), r.Amount, r.SubmittedAt.Format("2006-01-02 15:04"))
	}
	return tghelpers.SendHTML(c, b.String())
}

func (a *App) cmdStats(c tele.Context) error {
	if a.journal == nil {
		return tghelpers.SendHTML(c, "📭 Journal disabled: no database configured.")
	}
	s, err := a.journal.Stats(tghelpers.BuildContext(c))
	if err != nil {
		return err
	}
	text := fmt.Sprintf(
		"📊 <b>Purchase Stats</b>\n\n⏳ Pending: %d\n✅ Approved: %d\n❌ Rejected: %d\n💰 Revenue: ₹%d\n👥 Active sessions: %d",
		s.Pending, s.Approved, s.Rejected, s.Revenue, a.store.Len(),
	)
	return tghelpers.SendHTML(c, text)
}

// textFallback matches reply-keyboard button presses in any language.
func (a *App) textFallback(c tele.Context) error {
	text := strings.TrimSpace(c.Text())
	switch {
	case matchesKeyword(text, "btn_premium"):
		return a.svc.SelectPlans(tghelpers.BuildContext(c), c.Sender().ID)
	case matchesKeyword(text, "btn_help"):
		return a.cmdHelp(c)
	case matchesKeyword(text, "btn_status"):
		return a.cmdStatus(c)
	case matchesKeyword(text, "btn_support"):
		return a.cmdSupport(c)
	case matchesKeyword(text, "btn_change_lang"):
		return tghelpers.SendHTML(c, "🌐 Select Language:", languagePicker())
	}

	// A typed message (e.g. a transaction ID) while a window is open gets
	// upload guidance instead of silence.
	if active, err := a.svc.RemindUpload(tghelpers.BuildContext(c), c.Sender().ID); active {
		return err
	}
	return nil
}

func matchesKeyword(text, key string) bool {
	for _, kw := range i18n.Keywords(key) {
		if text == kw {
			return true
		}
	}
	return false
}

// onPhoto feeds proof photos into the purchase flow.
func (a *App) onPhoto(c tele.Context) error {
	photo := c.Message().Photo
	if photo == nil {
		return nil
	}
	user := c.Sender()
	ctx := tghelpers.BuildContext(c)

	err := a.svc.SubmitScreenshot(ctx, user.ID, photo.FileID,
		format.DisplayName(user.FirstName, user.LastName))
	switch {
	case errors.Is(err, purchase.ErrNotInPaymentFlow):
		// Unsolicited photo: nudge, no state change.
		lang := a.svc.Locale(user.ID)
		return tghelpers.SendHTML(c, i18n.T(lang, "help_text"))
	case errors.Is(err, purchase.ErrSessionLost):
		// User already informed by the service.
		return nil
	}
	return err
}

// onDocument rejects file uploads where a photo is expected. Outside of a
// payment flow documents are ignored.
func (a *App) onDocument(c tele.Context) error {
	active, err := a.svc.RemindUpload(tghelpers.BuildContext(c), c.Sender().ID)
	if !active {
		return nil
	}
	return err
}

func (a *App) operatorReject(c tele.Context) error {
	if c.Callback() != nil {
		return c.Respond(&tele.CallbackResponse{Text: "⚠️ Operator only!", ShowAlert: true})
	}
	return nil
}
