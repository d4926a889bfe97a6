package services

import (
	"context"

	"lab-backend/internal/apperr"
	"lab-backend/internal/email"
	"lab-backend/internal/models"
)

// SupplierService sends material requests to suppliers and exposes the
// history of every attempt.
type SupplierService struct {
	Sender *email.Sender
	Store  email.HistoryStore
}

func NewSupplierService(provider email.Provider, history email.HistoryStore) *SupplierService {
	return &SupplierService{Sender: email.NewSender(provider, history), Store: history}
}

// Request sends the email and returns the recorded entry, whose status
// tells whether the provider accepted it.
func (s *SupplierService) Request(ctx context.Context, req models.SupplierRequest) (*models.EmailLog, error) {
	entry, err := s.Sender.Send(ctx, req)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeDependency, err, "record email history")
	}
	return &entry, nil
}

func (s *SupplierService) History(ctx context.Context) ([]models.EmailLog, error) {
	entries, err := s.Store.List(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeDependency, err, "read email history")
	}
	if entries == nil {
		entries = []models.EmailLog{}
	}
	return entries, nil
}

func (s *SupplierService) ClearHistory(ctx context.Context) error {
	if err := s.Store.Clear(ctx); err != nil {
		return apperr.Wrap(apperr.CodeDependency, err, "clear email history")
	}
	return nil
}
