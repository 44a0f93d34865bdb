package app

import (
	"errors"
	"fmt"

	tele "gopkg.in/telebot.v4"

	"premiumbot/core/logger"
	"premiumbot/core/telegram/callbacks"
	"premiumbot/core/telegram/format"
	tghelpers "premiumbot/core/telegram/helpers"
	"premiumbot/internal/catalog"
	"premiumbot/internal/i18n"
	"premiumbot/internal/purchase"
	"premiumbot/internal/session"
	"log/slog"
)

const cbLang = "lang"

func (a *App) registerCallbacks() {
	reg := a.registry
	_ = reg.RegisterCallback(cbLang, a.cbLangSelected)
	_ = reg.RegisterCallback(catalog.Plan1Month, a.cbPlanChosen)
	_ = reg.RegisterCallback(catalog.Plan3Months, a.cbPlanChosen)
	_ = reg.RegisterCallback(purchase.CBComingSoon, a.cbComingSoon)
	_ = reg.RegisterCallback(purchase.CBCancel, a.cbCancel)
	_ = reg.RegisterCallback(purchase.CBUploadNow, a.cbUploadNow)
	_ = reg.RegisterCallback(purchase.CBApprove, a.cbDecision(true))
	_ = reg.RegisterCallback(purchase.CBReject, a.cbDecision(false))
	_ = reg.RegisterCallback(purchase.CBContact, a.cbContact)
}

func (a *App) cbLangSelected(c tele.Context) error {
	locale := callbacks.PayloadString(c)
	userID := c.Sender().ID
	a.svc.SetLocale(userID, locale)
	_ = c.Respond()

	lang := a.svc.Locale(userID)
	name := format.EscapeHTML(c.Sender().FirstName)
	return tghelpers.SendHTML(c, i18n.T(lang, "welcome", name), mainMenu(lang))
}

func (a *App) cbPlanChosen(c tele.Context) error {
	_ = c.Respond(&tele.CallbackResponse{Text: "⏳ Generating QR..."})
	ctx := tghelpers.BuildContext(c)
	err := a.svc.ChoosePlan(ctx, c.Sender().ID, callbacks.CallbackKey(c))
	if errors.Is(err, purchase.ErrUnknownPlan) || errors.Is(err, purchase.ErrComingSoon) {
		return nil
	}
	return err
}

func (a *App) cbComingSoon(c tele.Context) error {
	lang := a.svc.Locale(c.Sender().ID)
	return c.Respond(&tele.CallbackResponse{
		Text:      i18n.T(lang, "coming_soon_alert"),
		ShowAlert: true,
	})
}

func (a *App) cbCancel(c tele.Context) error {
	_ = c.Respond()
	if err := a.svc.Cancel(tghelpers.BuildContext(c), c.Sender().ID); err != nil {
		return err
	}
	return c.Edit("❌ Cancelled")
}

func (a *App) cbUploadNow(c tele.Context) error {
	err := a.svc.SignalUpload(tghelpers.BuildContext(c), c.Sender().ID)
	var invalid *session.ErrInvalidTransition
	if errors.As(err, &invalid) {
		// Stale button: the flow was cancelled or settled in the meantime.
		lang := a.svc.Locale(c.Sender().ID)
		return c.Respond(&tele.CallbackResponse{
			Text:      i18n.T(lang, "no_active_payment"),
			ShowAlert: true,
		})
	}
	if err != nil {
		return err
	}
	return c.Respond()
}

// cbDecision handles operator approve/reject buttons. The decision is applied
// exactly once; afterwards the operator message caption is annotated and its
// controls removed so a second tap has nothing to press.
func (a *App) cbDecision(approve bool) tele.HandlerFunc {
	return func(c tele.Context) error {
		targetID, err := callbacks.PayloadInt64(c)
		if err != nil {
			return c.Respond(&tele.CallbackResponse{Text: "Error processing User ID"})
		}

		ctx := tghelpers.BuildContext(c)
		dec, err := a.svc.Decide(ctx, c.Sender().ID, approve, targetID)
		switch {
		case errors.Is(err, purchase.ErrUnauthorized):
			return c.Respond(&tele.CallbackResponse{Text: "⚠️ Operator only!", ShowAlert: true})
		case errors.Is(err, purchase.ErrAlreadyProcessed):
			return c.Respond(&tele.CallbackResponse{Text: "Already processed", ShowAlert: true})
		case err != nil:
			return err
		}

		a.annotateDecision(c, dec)

		if dec.NotifyErr != nil {
			_ = tghelpers.SendHTML(c, fmt.Sprintf(
				"⚠️ Could not notify user <code>%d</code>: %s",
				targetID, format.EscapeHTML(dec.NotifyErr.Error()),
			))
		}
		return c.Respond(&tele.CallbackResponse{Text: "Done"})
	}
}

// annotateDecision appends the outcome to the proof message caption and
// strips the inline keyboard. Edit failures are tolerated: the session is
// already settled and a duplicate tap is absorbed by the service anyway.
func (a *App) annotateDecision(c tele.Context, dec purchase.Decision) {
	msg := c.Message()
	if msg == nil {
		return
	}
	caption := fmt.Sprintf("%s\n\n%s\nBy: %s",
		msg.Caption, dec.Tag, format.EscapeHTML(c.Sender().FirstName))
	if _, err := c.Bot().EditCaption(msg, caption, &tele.ReplyMarkup{}); err != nil {
		logger.TG.Warn("decision caption edit failed",
			slog.String("event", "decision.annotate.failed"),
			slog.String("err", err.Error()),
		)
	}
}

func (a *App) cbContact(c tele.Context) error {
	_ = c.Respond()
	target := callbacks.PayloadString(c)
	return tghelpers.SendHTML(c, fmt.Sprintf("Click to chat: tg://user?id=%s", target))
}
