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

type UpdateLocationCommand struct {
	TripID    string
	UserID    string
	Latitude  float64
	Longitude float64
}

func (c UpdateLocationCommand) Validate() error {
	if c.TripID == "" {
		return fmt.Errorf("invalid TripID - '%s'", c.TripID)
	}

	if c.UserID == "" {
		return fmt.Errorf("invalid UserID - '%s'", c.UserID)
	}

	if c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("invalid Latitude - '%f'", c.Latitude)
	}

	if c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("invalid Longitude - '%f'", c.Longitude)
	}

	return nil
}

type UpdateLocationCommandHandler struct {
	db       *sql.DB
	notifier realtime.Notifier
}

func NewUpdateLocationCommandHandler(db *sql.DB, notifier realtime.Notifier) *UpdateLocationCommandHandler {
	return &UpdateLocationCommandHandler{db, notifier}
}

// Handle writes location fields on the caller's own membership row only.
// The composite-key filter is what guarantees one member can never move
// another member's marker.
func (h *UpdateLocationCommandHandler) Handle(
	ctx context.Context,
	request UpdateLocationCommand,
) (core.Unit, error) {
	const stmt = `
		UPDATE
			members
		SET
			latitude = $3, longitude = $4, last_updated = now()
		WHERE
			trip_id = $1 AND user_id = $2;`
	if _, err := tql.Exec(
		ctx,
		h.db,
		stmt,
		request.TripID,
		request.UserID,
		request.Latitude,
		request.Longitude,
	); err != nil {
		return core.Unit{}, core.NewCommandError(500, err)
	}

	if err := h.notifier.MembersChanged(ctx, request.TripID); err != nil {
		core.Logger(ctx).Warn("failed to publish members change", zap.Error(err))
	}

	return core.Unit{}, nil
}
