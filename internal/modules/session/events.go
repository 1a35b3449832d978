package session

import (
	"github.com/karwaan/tripsync/internal/modules/geo"
	"github.com/karwaan/tripsync/internal/modules/route"
	"github.com/karwaan/tripsync/internal/modules/search"
	"github.com/karwaan/tripsync/internal/modules/trip/domain"
)

// Event is anything the coordinator reacts to: user actions, sensor
// samples and the coordinator's own completed async work.
type Event interface {
	isEvent()
}

// Trip lifecycle.

type CreateTrip struct {
	DisplayName string
}

type JoinTrip struct {
	TripCode    int
	DisplayName string
}

type LeaveTrip struct{}

// Location.

type LocationSample struct {
	Location geo.Coordinate
}

// Search and directions.

type QueryChanged struct {
	Query string
}

type SuggestionSelected struct {
	Place search.Place
}

type SearchSubmitted struct{}

type ClearSearch struct{}

type DirectionsOpened struct{}

type DirectionsDismissed struct{}

type StartQueryChanged struct {
	Query string
}

type StartSuggestionSelected struct {
	Place search.Place
}

type StartFromCurrentLocation struct{}

type StartSearchSubmitted struct{}

type RecenterRequested struct{}

func (CreateTrip) isEvent()               {}
func (JoinTrip) isEvent()                 {}
func (LeaveTrip) isEvent()                {}
func (LocationSample) isEvent()           {}
func (QueryChanged) isEvent()             {}
func (SuggestionSelected) isEvent()       {}
func (SearchSubmitted) isEvent()          {}
func (ClearSearch) isEvent()              {}
func (DirectionsOpened) isEvent()         {}
func (DirectionsDismissed) isEvent()      {}
func (StartQueryChanged) isEvent()        {}
func (StartSuggestionSelected) isEvent()  {}
func (StartFromCurrentLocation) isEvent() {}
func (StartSearchSubmitted) isEvent()     {}
func (RecenterRequested) isEvent()        {}

// Internal events - results of the coordinator's own async work re-entering
// the loop. Each carries the generation (or trip id) it belongs to so stale
// results from superseded work are discarded instead of applied.

type searchField int

const (
	fieldDestination searchField = iota
	fieldStart
)

type tripOpened struct {
	trip domain.Trip
	err  error
}

type subscriptionStarted struct {
	tripID string
}

type membersFetched struct {
	tripID  string
	members []domain.Member
}

type debounceFired struct {
	field searchField
	gen   uint64
	query string
}

type suggestionsResolved struct {
	field  searchField
	gen    uint64
	places []search.Place
	err    error
}

type destinationResolved struct {
	places []search.Place
	err    error
}

type startResolved struct {
	places []search.Place
	err    error
}

type routeResolved struct {
	gen uint64
	r   route.Route
	err error
}

type routeFrame struct {
	gen    uint64
	points []geo.Coordinate
}

type routeSettled struct {
	gen uint64
}

func (tripOpened) isEvent()          {}
func (subscriptionStarted) isEvent() {}
func (membersFetched) isEvent()      {}
func (debounceFired) isEvent()       {}
func (suggestionsResolved) isEvent() {}
func (destinationResolved) isEvent() {}
func (startResolved) isEvent()       {}
func (routeResolved) isEvent()       {}
func (routeFrame) isEvent()          {}
func (routeSettled) isEvent()        {}
