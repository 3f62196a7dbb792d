package checkout

import (
	"sync"
	"time"

	"github.com/muhammadmasoud/amazon-clone-sub000/internal/domain"
	apperrors "github.com/muhammadmasoud/amazon-clone-sub000/pkg/errors"
)

// Phase is where a checkout session is in its state machine.
type Phase string

const (
	PhaseIdle           Phase = "idle"
	PhaseMethodSelected Phase = "method_selected"
	PhaseSubmitting     Phase = "submitting"
	PhaseOrderPlaced    Phase = "order_placed"
	PhaseAbandoned      Phase = "abandoned"
)

// IsTerminal reports whether the session accepts no further transitions.
func (p Phase) IsTerminal() bool {
	return p == PhaseOrderPlaced || p == PhaseAbandoned
}

var errSessionEnded = apperrors.InvalidInput("This checkout has already finished")

// Session is the state of one checkout page visit.
type Session struct {
	mu      sync.Mutex
	phase   Phase
	form    domain.ShippingForm
	method  domain.PaymentMethod
	lastErr string
	guard   *SubmissionGuard
}

// NewSession creates an idle session whose submissions are spaced by cooldown.
func NewSession(cooldown time.Duration) *Session {
	return &Session{phase: PhaseIdle, guard: NewSubmissionGuard(cooldown)}
}

// SetShippingForm replaces the address and contact fields, trimmed.
func (s *Session) SetShippingForm(form domain.ShippingForm) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase.IsTerminal() {
		return errSessionEnded
	}
	s.form = form.Trimmed()
	return nil
}

// SelectPaymentMethod moves the session to MethodSelected.
func (s *Session) SelectPaymentMethod(m domain.PaymentMethod) error {
	if !m.IsValid() {
		return apperrors.InvalidInput("Please select a valid payment method")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.phase {
	case PhaseOrderPlaced, PhaseAbandoned:
		return errSessionEnded
	case PhaseSubmitting:
		return apperrors.Conflict("An order submission is in progress")
	}
	s.method = m
	s.phase = PhaseMethodSelected
	return nil
}

// Abandon ends the session without an order.
func (s *Session) Abandon() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.phase.IsTerminal() {
		s.phase = PhaseAbandoned
	}
}

func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

func (s *Session) PaymentMethod() domain.PaymentMethod {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.method
}

func (s *Session) ShippingForm() domain.ShippingForm {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form
}

// LastError is the message of the most recent failed submission.
func (s *Session) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Guard exposes the session's submission guard.
func (s *Session) Guard() *SubmissionGuard {
	return s.guard
}

// begin checks the session can submit and returns what to submit with.
func (s *Session) begin() (domain.ShippingForm, domain.PaymentMethod, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.phase {
	case PhaseOrderPlaced, PhaseAbandoned:
		return domain.ShippingForm{}, "", errSessionEnded
	case PhaseIdle:
		return domain.ShippingForm{}, "", apperrors.InvalidInput("Please select a payment method")
	}
	return s.form, s.method, nil
}

func (s *Session) transition(p Phase, lastErr string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase.IsTerminal() {
		return
	}
	s.phase = p
	s.lastErr = lastErr
}
