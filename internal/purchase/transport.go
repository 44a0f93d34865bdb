package purchase

import "context"

// Button is a chat-platform-agnostic inline control. Key and Payload map to
// the callback that fires when pressed.
type Button struct {
	Text    string
	Key     string
	Payload string
}

// Callback keys emitted on buttons built by the service. The app layer
// registers handlers under the same keys.
const (
	CBUploadNow  = "upload_now"
	CBApprove    = "approve"
	CBReject     = "reject"
	CBContact    = "contact"
	CBCancel     = "cancel_payment"
	CBComingSoon = "coming_soon"
)

// Transport delivers outbound messages. Implementations must be safe for
// concurrent use; the service calls them outside of any session lock.
type Transport interface {
	SendText(ctx context.Context, chatID int64, text string) error
	SendTextButtons(ctx context.Context, chatID int64, text string, rows ...[]Button) error
	SendImage(ctx context.Context, chatID int64, png []byte, caption string, rows ...[]Button) error
	// SendFileRef re-sends an already-uploaded attachment by its opaque
	// platform reference (used to forward the proof photo to the operator).
	SendFileRef(ctx context.Context, chatID int64, fileRef, caption string, rows ...[]Button) error
}

// Journal records purchase events for operator reporting. Implementations
// may be backed by a database; a nil journal disables recording.
type Journal interface {
	RecordSubmission(ctx context.Context, userID int64, plan string, amount int) error
	RecordDecision(ctx context.Context, userID int64, decision string) error
}
