package router

import (
	"time"

	tg "premiumbot/core/telegram"
	"premiumbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// MessageOptions controls routing of non-command message updates.
type MessageOptions struct {
	// Photo handles incoming photos (payment screenshots).
	Photo tele.HandlerFunc
	// UnknownText is invoked when text matches no command and no fallback
	// is registered.
	UnknownText tele.HandlerFunc
	// UnexpectedDocument is invoked for file uploads that are not photos.
	UnexpectedDocument tele.HandlerFunc
}

// MessageRoutes builds handlers for text, photo and document updates.
func MessageRoutes(reg *tg.Registry, opts MessageOptions) []tg.Route {
	textHandler := func(c tele.Context) error {
		start := time.Now()
		text := c.Text()

		if reg != nil {
			if key, cmd, ok := reg.LookupCommand(text); ok && cmd.Handler != nil {
				name := normalizeHandlerName(key)
				return handleWithSummary(c, name, start, "", "", func() error {
					return cmd.Handler(c)
				})
			}
			if fb := reg.TextFallback(); fb != nil {
				return handleWithSummary(c, "fallback", start, "", "", func() error {
					return fb(c)
				})
			}
		}

		if opts.UnknownText != nil {
			return handleWithSummary(c, "unknown_text", start, "", "", func() error {
				return opts.UnknownText(c)
			})
		}

		logHandlerSummary(c, "unknown_text", start, "skip", "ok", nil)
		return nil
	}

	photoHandler := func(c tele.Context) error {
		start := time.Now()
		if opts.Photo != nil {
			return handleWithSummary(c, "photo", start, "", "", func() error {
				return opts.Photo(c)
			})
		}
		logHandlerSummary(c, "photo", start, "skip", "ok", nil)
		return nil
	}

	docHandler := func(c tele.Context) error {
		start := time.Now()
		if opts.UnexpectedDocument != nil {
			return handleWithSummary(c, "unexpected_document", start, "", "", func() error {
				return opts.UnexpectedDocument(c)
			})
		}
		logHandlerSummary(c, "unexpected_document", start, "skip", "ok", nil)
		return nil
	}

	wrap := func(h tele.HandlerFunc) tele.HandlerFunc {
		return middleware.RecoverMiddleware(middleware.LoggerMiddleware(middleware.MessageMetricsMiddleware(h)))
	}

	return []tg.Route{
		{Endpoint: tele.OnText, Handler: wrap(textHandler)},
		{Endpoint: tele.OnPhoto, Handler: wrap(photoHandler)},
		{Endpoint: tele.OnDocument, Handler: wrap(docHandler)},
	}
}
