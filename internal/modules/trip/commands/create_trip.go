package commands

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/karwaan/tripsync/internal/modules/core"
	"github.com/karwaan/tripsync/internal/modules/trip/domain"
	"github.com/karwaan/tripsync/internal/realtime"

	"github.com/eskrenkovic/tql"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CreateTripCommand struct {
	HostID      string
	DisplayName string
}

func (c CreateTripCommand) Validate() error {
	if c.HostID == "" {
		return fmt.Errorf("invalid HostID - '%s'", c.HostID)
	}

	if c.DisplayName == "" {
		return fmt.Errorf("invalid DisplayName - '%s'", c.DisplayName)
	}

	return nil
}

type CreateTripCommandHandler struct {
	db       *sql.DB
	notifier realtime.Notifier
}

func NewCreateTripCommandHandler(db *sql.DB, notifier realtime.Notifier) *CreateTripCommandHandler {
	return &CreateTripCommandHandler{db, notifier}
}

// Handle inserts the trip row and the host membership row as a single
// transaction. A partial failure would otherwise leave an active trip with
// no members.
func (h *CreateTripCommandHandler) Handle(
	ctx context.Context,
	request CreateTripCommand,
) (domain.Trip, error) {
	trip := domain.Trip{
		ID:       uuid.NewString(),
		TripCode: domain.NewJoinCode(),
		HostID:   request.HostID,
		IsActive: true,
	}

	host := domain.Member{
		ID:          uuid.NewString(),
		TripID:      trip.ID,
		UserID:      request.HostID,
		DisplayName: domain.TruncateDisplayName(request.DisplayName),
		MarkerColor: domain.RandomMarkerColor(),
		IsActive:    true,
	}

	txFn := func(ctx context.Context, tx *sql.Tx) error {
		const tripStmt = `
			INSERT INTO
				trips (id, trip_code, host_id, is_active)
			VALUES
				(:id, :trip_code, :host_id, :is_active);`
		if _, err := tql.Exec(ctx, tx, tripStmt, trip); err != nil {
			return err
		}

		const memberStmt = `
			INSERT INTO
				members (id, trip_id, user_id, display_name, marker_color, is_active)
			VALUES
				(:id, :trip_id, :user_id, :display_name, :marker_color, :is_active);`
		_, err := tql.Exec(ctx, tx, memberStmt, host)
		return err
	}

	if err := core.Tx(ctx, h.db, txFn); err != nil {
		return domain.Trip{}, core.NewCommandError(500, fmt.Errorf("%w: %v", domain.ErrTripNotCreated, err))
	}

	if err := h.notifier.MembersChanged(ctx, trip.ID); err != nil {
		core.Logger(ctx).Warn("failed to publish members change", zap.Error(err))
	}

	return trip, nil
}
