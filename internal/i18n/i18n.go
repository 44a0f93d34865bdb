// Package i18n is a static locale table for user-facing texts. Lookup falls
// back to English for unknown locales and returns the key itself for unknown
// keys so a missing translation is visible instead of silent.
package i18n

import "fmt"

// DefaultLocale is used when a user never picked a language.
const DefaultLocale = "en"

// Supported reports whether the locale has a translation table.
func Supported(locale string) bool {
	_, ok := tables[locale]
	return ok
}

// Locales returns the supported locale codes in display order.
func Locales() []string {
	return []string{"en", "hi", "bn"}
}

// T resolves a key for a locale, applying fmt args when given.
func T(locale, key string, args ...any) string {
	tbl, ok := tables[locale]
	if !ok {
		tbl = tables[DefaultLocale]
	}
	text, ok := tbl[key]
	if !ok {
		text, ok = tables[DefaultLocale][key]
		if !ok {
			return key
		}
	}
	if len(args) == 0 {
		return text
	}
	return fmt.Sprintf(text, args...)
}

var tables = map[string]map[string]string{
	"en": {
		"btn_premium":     "🎥 YouTube Premium",
		"btn_help":        "ℹ️ Help",
		"btn_status":      "📊 My Status",
		"btn_support":     "💬 Support",
		"btn_change_lang": "🌐 Change Language",
		"welcome":         "👋 <b>Welcome to YouTube Premium Bot, %s!</b>\n\n🎥 Get <b>YouTube Premium + Music</b> at affordable prices!",
		"choose_plan":     "🎥 <b>Choose Your YouTube Premium Plan</b>\n\n🎯 <b>Includes YouTube Music Premium!</b>",
		"plan_1":          "1 Month - ₹20",
		"plan_3":          "3 Months - ₹55",
		"plan_6_soon":     "🔜 6 Months - ₹100 (Coming Soon)",
		"coming_soon_alert": "🔜 6 Months plan coming soon!",
		"payment_instr":   "🎥 <b>Payment Details</b>\n\n📦 Plan: <b>%s</b>\n💰 Amount: <b>₹%d</b>\n\n📱 <b>Scan QR to Pay</b>\n⏰ Timer: <b>5 minutes</b>\n✅ <b>Upload screenshot ANYTIME within 5 minutes!</b>",
		"upload_prompt":   "📸 <b>Upload Payment Screenshot</b>\n\nPlease send your payment screenshot photo now.",
		"window_until":    "⏰ Window closes at <b>%s</b>",
		"window_left":     "⏰ Payment window: <b>%d:%02d</b> left",
		"no_active_payment": "⚠️ No payment in progress. Pick a plan first.",
		"timer_ended":     "⏰ <b>Time Expired!</b>\n\nThe 5-minute timer has ended. Please start again.",
		"screenshot_received": "✅ <b>Screenshot Received!</b>\n\n🎉 Admin will review your payment shortly.",
		"approved":        "🎉 <b>APPROVED!</b>\n\n🎥 <b>Your YouTube Premium is Now ACTIVE!</b>",
		"rejected":        "❌ <b>Payment Rejected</b>\n\nPlease contact support.",
		"support_text":    "💬 <b>Need Help?</b>\n\nContact: %s\nUser ID: <code>%d</code>",
		"status_msg":      "📍 Status: <b>%s</b>\n💎 Plan: %s\n💰 Amount: ₹%v",
		"status_free":     "Free User",
		"status_pending":  "Pending Approval",
		"status_paying":   "Payment in Progress",
		"help_text":       "📚 <b>Help Guide</b>\n\n1. Click 🎥 YouTube Premium\n2. Select Plan\n3. Scan QR & Pay\n4. Upload Screenshot",
		"session_expired": "⚠️ <b>Session Expired</b>\n\nThe bot has restarted or your session timed out.\nPlease click 'YouTube Premium' to start again.",
	},
	"hi": {
		"btn_premium":     "🎥 YouTube Premium",
		"btn_help":        "ℹ️ मदद",
		"btn_status":      "📊 मेरी स्थिति",
		"btn_support":     "💬 सहायता",
		"btn_change_lang": "🌐 भाषा बदलें",
		"welcome":         "👋 <b>YouTube Premium बॉट में आपका स्वागत है, %s!</b>",
		"choose_plan":     "🎥 <b>अपना YouTube Premium प्लान चुनें</b>",
		"plan_1":          "1 महीना - ₹20",
		"plan_3":          "3 महीने - ₹55",
		"plan_6_soon":     "🔜 6 महीने - ₹100 (जल्द आ रहा है)",
		"coming_soon_alert": "🔜 6 महीने का प्लान जल्द आ रहा है!",
		"payment_instr":   "🎥 <b>भुगतान विवरण</b>\n\n📦 प्लान: <b>%s</b>\n💰 राशि: <b>₹%d</b>\n\n📱 <b>QR स्कैन करें</b>\n⏰ टाइमर: <b>5 मिनट</b>\n✅ <b>स्क्रीनशॉट कभी भी अपलोड करें!</b>",
		"upload_prompt":   "📸 <b>स्क्रीनशॉट अपलोड करें</b>\n\nकृपया भुगतान का फोटो भेजें।",
		"window_until":    "⏰ विंडो <b>%s</b> बजे बंद होगी",
		"window_left":     "⏰ भुगतान विंडो: <b>%d:%02d</b> शेष",
		"no_active_payment": "⚠️ कोई भुगतान जारी नहीं। पहले प्लान चुनें।",
		"timer_ended":     "⏰ <b>समय समाप्त!</b>\n\nकृपया प्रक्रिया पुनः आरंभ करें।",
		"screenshot_received": "✅ <b>स्क्रीनशॉट प्राप्त हुआ!</b>\n\n🎉 एडमिन जल्द समीक्षा करेंगे।",
		"approved":        "🎉 <b>स्वीकृत!</b>\n\n🎥 <b>YouTube Premium अब सक्रिय है!</b>",
		"rejected":        "❌ <b>अस्वीकृत</b>\n\nकृपया सहायता से संपर्क करें।",
		"support_text":    "💬 <b>मदद चाहिए?</b>\n\nसंपर्क: %s\nUser ID: <code>%d</code>",
		"status_msg":      "📍 स्थिति: <b>%s</b>\n💎 प्लान: %s\n💰 राशि: ₹%v",
		"status_free":     "फ्री यूजर",
		"status_pending":  "स्वीकृति लंबित",
		"status_paying":   "भुगतान जारी",
		"help_text":       "📚 <b>मदद</b>\n\n1. प्लान चुनें\n2. QR स्कैन करें\n3. स्क्रीनशॉट भेजें",
		"session_expired": "⚠️ <b>सत्र समाप्त</b>\n\nकृपया फिर से प्लान चुनें।",
	},
	"bn": {
		"btn_premium":     "🎥 YouTube Premium",
		"btn_help":        "ℹ️ সাহায্য",
		"btn_status":      "📊 আমার স্ট্যাটাস",
		"btn_support":     "💬 সাপোর্ট",
		"btn_change_lang": "🌐 ভাষা পরিবর্তন",
		"welcome":         "👋 <b>YouTube Premium বটে স্বাগতম, %s!</b>",
		"choose_plan":     "🎥 <b>আপনার YouTube Premium প্ল্যান বেছে নিন</b>",
		"plan_1":          "১ মাস - ₹20",
		"plan_3":          "৩ মাস - ₹55",
		"plan_6_soon":     "🔜 ৬ মাস - ₹100 (শীঘ্রই আসছে)",
		"coming_soon_alert": "🔜 ৬ মাসের প্ল্যান শীঘ্রই আসছে!",
		"payment_instr":   "🎥 <b>পেমেন্ট বিবরণ</b>\n\n📦 প্ল্যান: <b>%s</b>\n💰 পরিমাণ: <b>₹%d</b>\n\n📱 <b>QR স্ক্যান করুন</b>\n⏰ টাইমার: <b>৫ মিনিট</b>\n✅ <b>যেকোনো সময় স্ক্রিনশট দিন!</b>",
		"upload_prompt":   "📸 <b>স্ক্রিনশট আপলোড করুন</b>\n\nঅনুগ্রহ করে পেমেন্টের ছবি পাঠান।",
		"window_until":    "⏰ উইন্ডো <b>%s</b> এ বন্ধ হবে",
		"window_left":     "⏰ পেমেন্ট উইন্ডো: <b>%d:%02d</b> বাকি",
		"no_active_payment": "⚠️ কোনো পেমেন্ট চলছে না। আগে প্ল্যান নির্বাচন করুন।",
		"timer_ended":     "⏰ <b>সময় শেষ!</b>\n\nঅনুগ্রহ করে আবার শুরু করুন।",
		"screenshot_received": "✅ <b>স্ক্রিনশট প্রাপ্ত হয়েছে!</b>\n\n🎉 অ্যাডমিন শীঘ্রই পর্যালোচনা করবেন।",
		"approved":        "🎉 <b>অনুমোদিত!</b>\n\n🎥 <b>YouTube Premium এখন সক্রিয়!</b>",
		"rejected":        "❌ <b>প্রত্যাখ্যাত</b>\n\nসাপোর্টে যোগাযোগ করুন।",
		"support_text":    "💬 <b>সাহায্য দরকার?</b>\n\nযোগাযোগ: %s\nUser ID: <code>%d</code>",
		"status_msg":      "📍 স্ট্যাটাস: <b>%s</b>\n💎 প্ল্যান: %s\n💰 পরিমাণ: ₹%v",
		"status_free":     "ফ্রি ইউজার",
		"status_pending":  "অপেক্ষমান",
		"status_paying":   "পেমেন্ট চলছে",
		"help_text":       "📚 <b>সাহায্য</b>\n\n১. প্ল্যান নির্বাচন করুন\n২. QR স্ক্যান করুন\n৩. স্ক্রিনশট দিন",
		"session_expired": "⚠️ <b>মেয়াদ উত্তীর্ণ</b>\n\nঅনুগ্রহ করে আবার প্ল্যান নির্বাচন করুন।",
	},
}

// Keywords returns the translation of key in every locale. Used to match
// reply-keyboard button presses regardless of the user's language.
func Keywords(key string) []string {
	out := make([]string, 0, len(tables))
	for _, code := range Locales() {
		if text, ok := tables[code][key]; ok {
			out = append(out, text)
		}
	}
	return out
}
