package commands

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/karwaan/tripsync/internal/modules/core"
	"github.com/karwaan/tripsync/internal/realtime"

	"github.com/eskrenkovic/tql"
	"go.uber.org/zap"
)

type LeaveTripCommand struct {
	TripID string
	UserID string
}

func (c LeaveTripCommand) Validate() error {
	if c.TripID == "" {
		return fmt.Errorf("invalid TripID - '%s'", c.TripID)
	}

	if c.UserID == "" {
		return fmt.Errorf("invalid UserID - '%s'", c.UserID)
	}

	return nil
}

type LeaveTripCommandHandler struct {
	db       *sql.DB
	notifier realtime.Notifier
}

func NewLeaveTripCommandHandler(db *sql.DB, notifier realtime.Notifier) *LeaveTripCommandHandler {
	return &LeaveTripCommandHandler{db, notifier}
}

// Handle deactivates the membership rather than deleting it, so a later
// join with the same code reactivates the row. A missing membership is a
// no-op, not an error.
func (h *LeaveTripCommandHandler) Handle(
	ctx context.Context,
	request LeaveTripCommand,
) (core.Unit, error) {
	const stmt = `
		UPDATE
			members
		SET
			is_active = false
		WHERE
			trip_id = $1 AND user_id = $2;`
	if _, err := tql.Exec(ctx, h.db, stmt, request.TripID, request.UserID); err != nil {
		return core.Unit{}, core.NewCommandError(500, err)
	}

	if err := h.notifier.MembersChanged(ctx, request.TripID); err != nil {
		core.Logger(ctx).Warn("failed to publish members change", zap.Error(err))
	}

	return core.Unit{}, nil
}
