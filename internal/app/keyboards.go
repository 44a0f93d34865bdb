package app

import (
	tele "gopkg.in/telebot.v4"

	"premiumbot/core/telegram/keyboard"
	"premiumbot/internal/i18n"
)

// mainMenu is the persistent reply keyboard in the user's language.
func mainMenu(lang string) *tele.ReplyMarkup {
	return keyboard.ReplyButtons(
		[]string{i18n.T(lang, "btn_premium")},
		[]string{i18n.T(lang, "btn_help"), i18n.T(lang, "btn_status")},
		[]string{i18n.T(lang, "btn_support"), i18n.T(lang, "btn_change_lang")},
	)
}

// languagePicker offers the supported locales.
func languagePicker() *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{{Text: "🇬🇧 English", Unique: cbLang, Data: "en"}},
		[]keyboard.InlineBtn{{Text: "🇮🇳 हिन्दी (Hindi)", Unique: cbLang, Data: "hi"}},
		[]keyboard.InlineBtn{{Text: "🇧🇩 বাংলা (Bengali)", Unique: cbLang, Data: "bn"}},
	)
}
