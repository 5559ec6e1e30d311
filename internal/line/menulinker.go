package line

import (
	"context"
	"fmt"

	"github.com/kentyisapen/line-chatbot-workshop/internal/consult"
	domerrors "github.com/kentyisapen/line-chatbot-workshop/internal/errors"
	"github.com/kentyisapen/line-chatbot-workshop/internal/logger"
	"github.com/kentyisapen/line-chatbot-workshop/internal/metrics"
)

// MenuStore resolves logical menu names to platform-assigned ids.
type MenuStore interface {
	GetMenu(ctx context.Context, name string) (*consult.MenuBinding, error)
}

// MenuAPI is the platform call the linker needs from Client.
type MenuAPI interface {
	LinkRichMenuToUser(ctx context.Context, userID, richMenuID string) error
}

// MenuLinker resolves a logical menu name through the menu store and binds
// the resulting rich menu id to a user.
type MenuLinker struct {
	store   MenuStore
	api     MenuAPI
	logger  *logger.Logger
	metrics *metrics.Metrics
}

// NewMenuLinker creates a new MenuLinker.
func NewMenuLinker(store MenuStore, api MenuAPI, log *logger.Logger, m *metrics.Metrics) *MenuLinker {
	return &MenuLinker{
		store:   store,
		api:     api,
		logger:  log.WithModule("menulinker"),
		metrics: m,
	}
}

// Link binds the named rich menu to the user. A menu that was never
// registered (or has no remote id yet) yields ErrMenuNotRegistered.
func (l *MenuLinker) Link(ctx context.Context, userID, menuName string) error {
	binding, err := l.store.GetMenu(ctx, menuName)
	if err != nil {
		l.metrics.RecordMenuLink(menuName, "error")
		return fmt.Errorf("resolve menu %s: %w", menuName, err)
	}
	if binding == nil || binding.RemoteID == "" {
		l.metrics.RecordMenuLink(menuName, "not_registered")
		return fmt.Errorf("menu %s: %w", menuName, domerrors.ErrMenuNotRegistered)
	}

	if err := l.api.LinkRichMenuToUser(ctx, userID, binding.RemoteID); err != nil {
		l.metrics.RecordMenuLink(menuName, "error")
		return err
	}

	l.metrics.RecordMenuLink(menuName, "success")
	return nil
}
