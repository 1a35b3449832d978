package trip

import (
	"fmt"
	"net/http"
	"path"

	"github.com/karwaan/tripsync/internal/modules/core"
	"github.com/karwaan/tripsync/internal/modules/trip/commands"
	"github.com/karwaan/tripsync/internal/modules/trip/domain"
	"github.com/karwaan/tripsync/internal/modules/trip/queries"

	"github.com/eskrenkovic/mediator-go"
	"github.com/go-chi/chi"
)

type TripHTTPHandler struct{}

func NewTripHTTPHandler() *TripHTTPHandler {
	return &TripHTTPHandler{}
}

func (h *TripHTTPHandler) HandleCreateTrip(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := core.RequestBody[struct {
		DisplayName string `json:"display_name"`
	}](r)
	if err != nil {
		core.WriteBadRequest(w, r, err)
		return
	}

	command := commands.CreateTripCommand{
		HostID:      core.DeviceID(ctx),
		DisplayName: body.DisplayName,
	}

	trip, err := mediator.Send[commands.CreateTripCommand, domain.Trip](ctx, command)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	location := path.Join(r.Host, "trips", trip.ID)
	core.WriteCreated(w, r, location, trip)
}

func (h *TripHTTPHandler) HandleJoinTrip(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := core.RequestBody[struct {
		TripCode    int    `json:"trip_code"`
		DisplayName string `json:"display_name"`
	}](r)
	if err != nil {
		core.WriteBadRequest(w, r, err)
		return
	}

	command := commands.JoinTripCommand{
		TripCode:    body.TripCode,
		UserID:      core.DeviceID(ctx),
		DisplayName: body.DisplayName,
	}

	trip, err := mediator.Send[commands.JoinTripCommand, domain.Trip](ctx, command)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, trip)
}

func (h *TripHTTPHandler) HandleLeaveTrip(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	command := commands.LeaveTripCommand{
		TripID: chi.URLParam(r, "id"),
		UserID: core.DeviceID(ctx),
	}

	if _, err := mediator.Send[commands.LeaveTripCommand, core.Unit](ctx, command); err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, nil)
}

func (h *TripHTTPHandler) HandleUpdateLocation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := core.RequestBody[struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	}](r)
	if err != nil {
		core.WriteBadRequest(w, r, err)
		return
	}

	command := commands.UpdateLocationCommand{
		TripID:    chi.URLParam(r, "id"),
		UserID:    core.DeviceID(ctx),
		Latitude:  body.Latitude,
		Longitude: body.Longitude,
	}

	if _, err := mediator.Send[commands.UpdateLocationCommand, core.Unit](ctx, command); err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, nil)
}

func (h *TripHTTPHandler) HandleGetMembers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tripID := chi.URLParam(r, "id")
	if tripID == "" {
		core.WriteBadRequest(w, r, fmt.Errorf("missing required path param 'id'"))
		return
	}

	members, err := mediator.Send[queries.GetMembersQuery, []domain.Member](
		ctx,
		queries.GetMembersQuery{TripID: tripID},
	)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, members)
}
