package email

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"lab-backend/internal/logger"
	"lab-backend/internal/models"
)

// ErrBlockedRecipient is returned by the simulated provider for recipients
// whose domain is on the blocked list.
var ErrBlockedRecipient = errors.New("recipient domain is blocked")

// Provider delivers a single message.
type Provider interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SimulatedProvider never talks to a mail server. It logs the message and
// fails only for recipients on a blocked host.
type SimulatedProvider struct {
	BlockedHosts []string
	Log          *logger.Logger
}

func NewSimulatedProvider(blocked []string, log *logger.Logger) *SimulatedProvider {
	if log == nil {
		log = logger.Nop()
	}
	return &SimulatedProvider{BlockedHosts: blocked, Log: log.Component("email")}
}

func (p *SimulatedProvider) Send(ctx context.Context, to, subject, body string) error {
	at := strings.LastIndex(to, "@")
	if at < 0 || at == len(to)-1 {
		return fmt.Errorf("invalid recipient %q", to)
	}
	host := strings.ToLower(to[at+1:])
	for _, blocked := range p.BlockedHosts {
		if strings.EqualFold(host, blocked) {
			return ErrBlockedRecipient
		}
	}

	ctx = p.Log.WithFields(ctx, map[string]any{
		"to":      to,
		"subject": subject,
		"bytes":   len(body),
	})
	p.Log.Info(ctx, "simulated email sent")
	return nil
}

// Sender sends through a Provider and records every attempt in a HistoryStore.
type Sender struct {
	Provider Provider
	History  HistoryStore
	Now      func() time.Time
}

func NewSender(provider Provider, history HistoryStore) *Sender {
	return &Sender{Provider: provider, History: history, Now: time.Now}
}

// Send returns the recorded entry. A provider failure is not an error: the
// entry carries status falhou and the reason. err reports only a failure to
// record the attempt.
func (s *Sender) Send(ctx context.Context, req models.SupplierRequest) (models.EmailLog, error) {
	subject := strings.TrimSpace(req.Subject)
	if subject == "" {
		subject = models.DefaultSupplierSubject
	}

	entry := models.EmailLog{
		ID:        uuid.NewString(),
		Recipient: strings.TrimSpace(req.SupplierEmail),
		Subject:   subject,
		Message:   req.Message,
		Status:    models.EmailStatusSent,
		Timestamp: s.Now().UTC(),
	}

	if err := s.Provider.Send(ctx, entry.Recipient, entry.Subject, entry.Message); err != nil {
		entry.Status = models.EmailStatusFailed
		entry.Error = err.Error()
	}

	if err := s.History.Append(ctx, entry); err != nil {
		return entry, fmt.Errorf("record email history: %w", err)
	}
	return entry, nil
}
