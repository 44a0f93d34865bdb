package middleware

import tele "gopkg.in/telebot.v4"

// OperatorOptions defines how operator-only checks should behave.
type OperatorOptions struct {
	OperatorID int64
	OnReject   tele.HandlerFunc
}

// OperatorOnlyMiddleware ensures that only the configured operator can invoke
// downstream handlers. Everyone else gets the reject handler (if any) and no
// state is touched.
func OperatorOnlyMiddleware(opts OperatorOptions) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if opts.OperatorID != 0 && c.Sender().ID != opts.OperatorID {
				if opts.OnReject != nil {
					return opts.OnReject(c)
				}
				return nil
			}
			return next(c)
		}
	}
}
