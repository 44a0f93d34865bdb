package session

import "fmt"

// State enumerates the payment flow states for a single user.
type State string

const (
	StateIdle               State = "idle"
	StatePlanSelection      State = "plan_selection"
	StateAwaitingPayment    State = "awaiting_payment"
	StateAwaitingScreenshot State = "awaiting_screenshot"
	StatePendingApproval    State = "pending_approval"
)

// Event enumerates the inputs that drive state transitions.
type Event string

const (
	// EventSelectPlans opens the plan picker.
	EventSelectPlans Event = "select_plans"
	// EventChoosePlan commits to a concrete plan and opens a payment window.
	EventChoosePlan Event = "choose_plan"
	// EventWindowElapsed fires when the payment window timer expires.
	EventWindowElapsed Event = "window_elapsed"
	// EventSignalUpload is the user pressing "upload screenshot".
	EventSignalUpload Event = "signal_upload"
	// EventPhotoReceived is a proof-of-payment photo arriving.
	EventPhotoReceived Event = "photo_received"
	// EventDecide is the operator approving or rejecting.
	EventDecide Event = "decide"
	// EventCancel aborts the flow.
	EventCancel Event = "cancel"
)

// ErrInvalidTransition wraps transition attempts the machine does not allow.
type ErrInvalidTransition struct {
	From  State
	Event Event
}

func (e *ErrInvalidTransition) Error() string {
	return fmt.Sprintf("session: invalid transition: %s on %s", e.Event, e.From)
}

// Next computes the successor state for an event, or an error when the event
// is not permitted in the current state.
//
// Choosing a plan is allowed from any state: a second selection overwrites
// the running session rather than being rejected. The window timer may only
// move awaiting_payment forward; in any other state it is stale.
func Next(from State, ev Event) (State, error) {
	switch ev {
	case EventSelectPlans:
		return StatePlanSelection, nil
	case EventChoosePlan:
		return StateAwaitingPayment, nil
	case EventCancel:
		return StateIdle, nil
	case EventWindowElapsed:
		if from == StateAwaitingPayment {
			return StateAwaitingScreenshot, nil
		}
	case EventSignalUpload:
		if from == StateAwaitingPayment || from == StateAwaitingScreenshot {
			return StateAwaitingScreenshot, nil
		}
	case EventPhotoReceived:
		if from == StateAwaitingPayment || from == StateAwaitingScreenshot {
			return StatePendingApproval, nil
		}
	case EventDecide:
		if from == StatePendingApproval {
			return StateIdle, nil
		}
	}
	return from, &ErrInvalidTransition{From: from, Event: ev}
}

// InPaymentFlow reports whether the state carries payment-specific fields.
func InPaymentFlow(s State) bool {
	switch s {
	case StateAwaitingPayment, StateAwaitingScreenshot, StatePendingApproval:
		return true
	}
	return false
}
