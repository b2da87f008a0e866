// Package mail delivers reviewer invitations over SMTP.
package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"

	gomail "github.com/go-mail/mail/v2"

	"github.com/example/editorial/internal/config"
	"github.com/example/editorial/internal/ports/secondary"
)

type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPNotifier implements secondary.Notifier.
type SMTPNotifier struct {
	from   string
	domain string
	dialer sender
}

// NewSMTPNotifier builds a notifier from the smtp section. STARTTLS is
// mandatory.
func NewSMTPNotifier(cfg config.SMTP) *SMTPNotifier {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Pass)
	d.StartTLSPolicy = gomail.MandatoryStartTLS
	d.TLSConfig = &tls.Config{ServerName: cfg.Host}
	return newNotifier(cfg, d)
}

func newNotifier(cfg config.SMTP, d sender) *SMTPNotifier {
	return &SMTPNotifier{from: cfg.From, domain: cfg.AddressDomain, dialer: d}
}

// Address maps a user ID to a mail address.
func (n *SMTPNotifier) Address(userID string) (string, error) {
	userID = strings.TrimSpace(userID)
	switch {
	case strings.Contains(userID, "@"):
		return userID, nil
	case userID == "" || n.domain == "":
		return "", fmt.Errorf("no mail address for user %q", userID)
	}
	return userID + "@" + n.domain, nil
}

// NotifyReviewerInvited sends the review request.
func (n *SMTPNotifier) NotifyReviewerInvited(ctx context.Context, inv secondary.Invitation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	to, err := n.Address(inv.ReviewerID)
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("Review request: %s (round %d)", inv.SubmissionTitle, inv.Round))
	m.SetBody("text/plain", invitationBody(inv))

	if err := n.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send invitation for %s: %w", inv.AssignmentID, err)
	}
	return nil
}

func invitationBody(inv secondary.Invitation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You have been invited to review %q (round %d).\n\n", inv.SubmissionTitle, inv.Round)
	if msg := strings.TrimSpace(inv.PersonalMessage); msg != "" {
		b.WriteString(msg)
		b.WriteString("\n\n")
	}
	if inv.ResponseDueDate != "" {
		fmt.Fprintf(&b, "Please respond by %s.\n", inv.ResponseDueDate)
	}
	if inv.DueDate != "" {
		fmt.Fprintf(&b, "The review is due %s.\n", inv.DueDate)
	}
	fmt.Fprintf(&b, "\nAssignment: %s\n", inv.AssignmentID)
	return b.String()
}

// Nop drops every notification. It is used when no SMTP host is configured.
type Nop struct{}

// NotifyReviewerInvited does nothing.
func (Nop) NotifyReviewerInvited(context.Context, secondary.Invitation) error { return nil }
