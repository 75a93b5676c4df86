package domain

import "fmt"

// Session state constants for the active point-of-sale session.
// A session moves draft -> processing -> completed or failed; saving the cart
// as a pending sale moves it draft -> saved_pending without ever processing.
const (
	SessionDraft        = "draft"
	SessionProcessing   = "processing"
	SessionCompleted    = "completed"
	SessionFailed       = "failed"
	SessionSavedPending = "saved_pending"
)

// Checkout step names, in execution order. Steps through StepCustomer halt
// the checkout on failure; receipt and notification are best-effort.
const (
	StepSequence   = "sequence"
	StepSaleHeader = "sale_header"
	StepSaleLines  = "sale_lines"
	StepCustomer   = "customer_aggregate"
	StepReceipt    = "receipt"
	StepNotify     = "notify"
)

// StepError reports which checkout step failed. Writes applied by earlier
// steps are left in place; there is no rollback, so the operator must decide
// whether to retry the whole checkout or intervene manually.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("checkout step %s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// NewStepError wraps err with the checkout step it occurred in.
func NewStepError(step string, err error) *StepError {
	return &StepError{Step: step, Err: err}
}
