package notification

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/frahmantamala/leaveflow/internal/core/common/validation"
	"github.com/frahmantamala/leaveflow/internal/core/events"
	"github.com/frahmantamala/leaveflow/internal/leave"
)

// Notifier builds the application emails. Welcome and decision mails go through the
// dispatcher; the reset mail is sent inline so the caller can report a failure.
type Notifier struct {
	sender      Sender
	dispatcher  *Dispatcher
	templates   *renderer
	frontendURL string
	logger      *slog.Logger
}

func NewNotifier(sender Sender, dispatcher *Dispatcher, frontendURL string, logger *slog.Logger) (*Notifier, error) {
	templates, err := newRenderer()
	if err != nil {
		return nil, err
	}
	return &Notifier{
		sender:      sender,
		dispatcher:  dispatcher,
		templates:   templates,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		logger:      logger,
	}, nil
}

func (n *Notifier) WelcomeMessage(name, email string) (Message, error) {
	msg := Message{To: email, ToName: name, Subject: "Welcome to LeaveFlow"}
	err := n.templates.render(templateWelcome, struct {
		Name     string
		LoginURL string
	}{name, n.frontendURL + "/login"}, &msg)
	return msg, err
}

// SendWelcome queues the welcome mail; failures are only logged.
func (n *Notifier) SendWelcome(name, email string) {
	msg, err := n.WelcomeMessage(name, email)
	if err != nil {
		n.logger.Error("failed to render welcome email", "error", err, "to", email)
		return
	}
	n.dispatcher.Enqueue(Job{Kind: templateWelcome, Message: msg})
}

func (n *Notifier) ResetURL(token string) string {
	return n.frontendURL + "/reset-password?token=" + url.QueryEscape(token)
}

// SendPasswordReset delivers the reset link synchronously and returns the delivery error.
func (n *Notifier) SendPasswordReset(ctx context.Context, name, email, token string, validFor time.Duration) error {
	msg := Message{To: email, ToName: name, Subject: "Password reset - LeaveFlow"}
	err := n.templates.render(templatePasswordReset, struct {
		Name     string
		ResetURL string
		ValidFor string
	}{name, n.ResetURL(token), humanDuration(validFor)}, &msg)
	if err != nil {
		return err
	}
	return n.sender.Send(ctx, msg)
}

func (n *Notifier) LeaveDecisionMessage(e *events.LeaveDecidedEvent) (Message, error) {
	status := strings.ToLower(leave.Status(e.Status).Display())
	msg := Message{
		To:      e.OwnerEmail,
		ToName:  e.OwnerName,
		Subject: fmt.Sprintf("Your leave request was %s", status),
	}
	err := n.templates.render(templateLeaveDecided, struct {
		Name      string
		Status    string
		StartDate string
		EndDate   string
		Comment   string
		LeavesURL string
	}{
		e.OwnerName,
		status,
		e.StartDate.Format(validation.DateLayout),
		e.EndDate.Format(validation.DateLayout),
		e.Comment,
		n.frontendURL + "/leaves",
	}, &msg)
	return msg, err
}

func (n *Notifier) SendLeaveDecision(e *events.LeaveDecidedEvent) {
	msg, err := n.LeaveDecisionMessage(e)
	if err != nil {
		n.logger.Error("failed to render leave decision email", "error", err, "leave_id", e.LeaveID)
		return
	}
	n.dispatcher.Enqueue(Job{Kind: templateLeaveDecided, Message: msg})
}

// RegisterEventHandlers subscribes the notifier to the domain events it mails about.
func (n *Notifier) RegisterEventHandlers(bus *events.EventBus) {
	bus.Subscribe(events.EventTypeEmployeeRegistered, n.handleEmployeeRegistered)
	bus.Subscribe(events.EventTypeLeaveDecided, n.handleLeaveDecided)
}

func (n *Notifier) handleEmployeeRegistered(_ context.Context, event events.Event) error {
	e, ok := event.(*events.EmployeeRegisteredEvent)
	if !ok {
		return fmt.Errorf("unexpected event %T for %s", event, event.EventType())
	}
	n.SendWelcome(e.Name, e.Email)
	return nil
}

func (n *Notifier) handleLeaveDecided(_ context.Context, event events.Event) error {
	e, ok := event.(*events.LeaveDecidedEvent)
	if !ok {
		return fmt.Errorf("unexpected event %T for %s", event, event.EventType())
	}
	n.SendLeaveDecision(e)
	return nil
}

func humanDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return "a limited time"
	case d%time.Hour == 0:
		h := int(d / time.Hour)
		if h == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", h)
	default:
		m := int(d / time.Minute)
		if m == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", m)
	}
}
