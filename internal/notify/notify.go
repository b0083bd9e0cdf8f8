package notify

//go:generate mockgen -source=notify.go -destination=mocks/mock_notify.go -package=mocks

import (
	"context"

	"github.com/nohumanman/descenders-modding/internal/model"
)

// Notifier announces events outside the dashboard
type Notifier interface {
	NotifyTimeVerified(ctx context.Context, rec *model.TimeRecord) error
}

// Nop discards every notification
type Nop struct{}

var _ Notifier = Nop{}

func (Nop) NotifyTimeVerified(ctx context.Context, rec *model.TimeRecord) error {
	return nil
}
