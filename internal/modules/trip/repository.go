package trip

import (
	"context"

	"github.com/karwaan/tripsync/internal/modules/core"
	"github.com/karwaan/tripsync/internal/modules/trip/commands"
	"github.com/karwaan/tripsync/internal/modules/trip/domain"
	"github.com/karwaan/tripsync/internal/modules/trip/queries"

	"github.com/eskrenkovic/mediator-go"
)

// Repository is the synchronous-looking façade over the remote store the
// session coordinator works against. Each call dispatches the matching
// command/query through the mediator pipeline, so in-process callers get
// the same validation and logging as HTTP callers. Handlers are registered
// once, in the composition root.
type Repository struct{}

func NewRepository() *Repository {
	return &Repository{}
}

func (r *Repository) CreateTrip(ctx context.Context, hostID, displayName string) (domain.Trip, error) {
	return mediator.Send[commands.CreateTripCommand, domain.Trip](
		ctx,
		commands.CreateTripCommand{HostID: hostID, DisplayName: displayName},
	)
}

func (r *Repository) JoinTrip(ctx context.Context, code int, userID, displayName string) (domain.Trip, error) {
	return mediator.Send[commands.JoinTripCommand, domain.Trip](
		ctx,
		commands.JoinTripCommand{TripCode: code, UserID: userID, DisplayName: displayName},
	)
}

func (r *Repository) LeaveTrip(ctx context.Context, tripID, userID string) error {
	_, err := mediator.Send[commands.LeaveTripCommand, core.Unit](
		ctx,
		commands.LeaveTripCommand{TripID: tripID, UserID: userID},
	)
	return err
}

func (r *Repository) UpdateLocation(ctx context.Context, tripID, userID string, lat, lng float64) error {
	_, err := mediator.Send[commands.UpdateLocationCommand, core.Unit](
		ctx,
		commands.UpdateLocationCommand{TripID: tripID, UserID: userID, Latitude: lat, Longitude: lng},
	)
	return err
}

func (r *Repository) FetchMembers(ctx context.Context, tripID string) ([]domain.Member, error) {
	return mediator.Send[queries.GetMembersQuery, []domain.Member](
		ctx,
		queries.GetMembersQuery{TripID: tripID},
	)
}
