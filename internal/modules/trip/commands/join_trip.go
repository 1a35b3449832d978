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

type JoinTripCommand struct {
	TripCode    int
	UserID      string
	DisplayName string
}

func (c JoinTripCommand) Validate() error {
	if c.TripCode < 100000 || c.TripCode > 999999 {
		return fmt.Errorf("invalid TripCode - '%d'", c.TripCode)
	}

	if c.UserID == "" {
		return fmt.Errorf("invalid UserID - '%s'", c.UserID)
	}

	if c.DisplayName == "" {
		return fmt.Errorf("invalid DisplayName - '%s'", c.DisplayName)
	}

	return nil
}

type JoinTripCommandHandler struct {
	db       *sql.DB
	notifier realtime.Notifier
}

func NewJoinTripCommandHandler(db *sql.DB, notifier realtime.Notifier) *JoinTripCommandHandler {
	return &JoinTripCommandHandler{db, notifier}
}

// Handle is idempotent under repeated joins: an existing membership row for
// (trip, user) is reactivated with the new display name instead of being
// duplicated.
func (h *JoinTripCommandHandler) Handle(
	ctx context.Context,
	request JoinTripCommand,
) (domain.Trip, error) {
	const tripQuery = `
		SELECT
			*
		FROM
			trips
		WHERE
			trip_code = $1 AND is_active = true;`
	trips, err := tql.Query[domain.Trip](ctx, h.db, tripQuery, request.TripCode)
	if err != nil {
		return domain.Trip{}, core.NewCommandError(500, err)
	}

	if len(trips) == 0 {
		return domain.Trip{}, core.NewCommandError(404, domain.ErrTripNotFound)
	}

	trip := trips[0]
	displayName := domain.TruncateDisplayName(request.DisplayName)

	const existingQuery = `
		SELECT
			*
		FROM
			members
		WHERE
			trip_id = $1 AND user_id = $2;`
	existing, err := tql.Query[domain.Member](ctx, h.db, existingQuery, trip.ID, request.UserID)
	if err != nil {
		return domain.Trip{}, core.NewCommandError(500, err)
	}

	if len(existing) > 0 {
		const reactivateStmt = `
			UPDATE
				members
			SET
				is_active = true, display_name = $3
			WHERE
				trip_id = $1 AND user_id = $2;`
		if _, err := tql.Exec(ctx, h.db, reactivateStmt, trip.ID, request.UserID, displayName); err != nil {
			return domain.Trip{}, core.NewCommandError(500, err)
		}
	} else {
		member := domain.Member{
			ID:          uuid.NewString(),
			TripID:      trip.ID,
			UserID:      request.UserID,
			DisplayName: displayName,
			MarkerColor: domain.RandomMarkerColor(),
			IsActive:    true,
		}

		const insertStmt = `
			INSERT INTO
				members (id, trip_id, user_id, display_name, marker_color, is_active)
			VALUES
				(:id, :trip_id, :user_id, :display_name, :marker_color, :is_active);`
		if _, err := tql.Exec(ctx, h.db, insertStmt, member); err != nil {
			return domain.Trip{}, core.NewCommandError(500, err)
		}
	}

	if err := h.notifier.MembersChanged(ctx, trip.ID); err != nil {
		core.Logger(ctx).Warn("failed to publish members change", zap.Error(err))
	}

	return trip, nil
}
