package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/karwaan/tripsync/internal/modules/geo"
	"github.com/karwaan/tripsync/internal/modules/route"
	"github.com/karwaan/tripsync/internal/modules/search"
	"github.com/karwaan/tripsync/internal/modules/trip"
	"github.com/karwaan/tripsync/internal/modules/trip/domain"
	"github.com/karwaan/tripsync/internal/realtime"

	"go.uber.org/zap"
)

// TripRepository is the synchronous-looking façade over the remote store.
type TripRepository interface {
	CreateTrip(ctx context.Context, hostID, displayName string) (domain.Trip, error)
	JoinTrip(ctx context.Context, code int, userID, displayName string) (domain.Trip, error)
	LeaveTrip(ctx context.Context, tripID, userID string) error
	UpdateLocation(ctx context.Context, tripID, userID string, lat, lng float64) error
	FetchMembers(ctx context.Context, tripID string) ([]domain.Member, error)
}

// Searcher resolves free-text place queries.
type Searcher interface {
	Search(ctx context.Context, query string) ([]search.Place, error)
}

// Router fetches a driving route between two coordinates.
type Router interface {
	GetRoute(ctx context.Context, start, end geo.Coordinate) (route.Route, error)
}

// The production wiring: mediator-backed repository, Nominatim search, OSRM
// routing.
var (
	_ TripRepository = (*trip.Repository)(nil)
	_ Searcher       = (*search.Client)(nil)
	_ Router         = (*route.Client)(nil)
)

const (
	// DefaultDebounce is the quiet period after a keystroke before a
	// suggestion lookup fires.
	DefaultDebounce = 300 * time.Millisecond

	// minQueryLength - queries shorter than this never hit the
	// geocoding service.
	minQueryLength = 2
)

const (
	msgWaitingForGPS    = "Waiting for GPS location…"
	msgNoDestination    = "Destination not selected"
	msgTripNotFound     = "Trip not found"
	msgTripFailed       = "Could not reach the trip service. Try again."
	msgSearchFailed     = "Search failed. Try again."
	msgNoResults        = "No results found"
	msgRouteFetchFailed = "Could not fetch route. Try again."
)

type Config struct {
	UserID     string
	Repository TripRepository
	Search     Searcher
	Routes     Router
	Bridge     realtime.Bridge
	Logger     *zap.Logger

	// Debounce and RevealStep default to DefaultDebounce and
	// route.RevealStep; tests shrink them.
	Debounce   time.Duration
	RevealStep time.Duration

	// OnSnapshot, when set, receives an immutable state snapshot after
	// every applied event. The rendering surface subscribes here; it has
	// no back-channel except dispatching user events.
	OnSnapshot func(State)
}

// Coordinator is the single owner of mutable session state. Every inbound
// event - user action, GPS sample, realtime tick, completed async work - is
// serialized through its event loop, so each handler is one atomic state
// transform and no lock is ever held across a suspension point.
type Coordinator struct {
	cfg    Config
	store  *Store
	events chan Event

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// Trip-scoped lifetime: cancelled on leave or close.
	tripCancel context.CancelFunc

	// Debounce generations per search field. A stale generation on a
	// timer fire or a fetch result means the work was superseded.
	searchGen    [2]uint64
	searchCancel [2]context.CancelFunc

	// Route generation guards both the fetch and the reveal animation.
	routeGen    uint64
	routeCancel context.CancelFunc
}

func New(cfg Config) *Coordinator {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.RevealStep <= 0 {
		cfg.RevealStep = route.RevealStep
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Coordinator{
		cfg:    cfg,
		store:  NewStore(cfg.UserID),
		events: make(chan Event, 64),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start launches the event loop.
func (c *Coordinator) Start() {
	c.wg.Add(1)
	go c.run()
}

// Close tears the coordinator down: the trip subscription is cancelled and
// in-flight work is discarded. Safe to call once.
func (c *Coordinator) Close() {
	c.cancel()
	c.wg.Wait()
}

// Dispatch hands an event to the coordinator. It blocks only if the event
// buffer is full and never blocks after Close.
func (c *Coordinator) Dispatch(event Event) {
	select {
	case c.events <- event:
	case <-c.ctx.Done():
	}
}

// Snapshot returns an immutable copy of the current state.
func (c *Coordinator) Snapshot() State {
	return c.store.Snapshot()
}

func (c *Coordinator) run() {
	defer c.wg.Done()

	for {
		select {
		case <-c.ctx.Done():
			c.teardownTrip()
			return
		case event := <-c.events:
			c.handle(event)
			c.publish()
		}
	}
}

func (c *Coordinator) publish() {
	if c.cfg.OnSnapshot != nil {
		c.cfg.OnSnapshot(c.store.Snapshot())
	}
}

func (c *Coordinator) handle(event Event) {
	switch e := event.(type) {
	// Trip lifecycle.
	case CreateTrip:
		c.clearError()
		c.handleCreateTrip(e)
	case JoinTrip:
		c.clearError()
		c.handleJoinTrip(e)
	case LeaveTrip:
		c.clearError()
		c.handleLeaveTrip()
	case tripOpened:
		c.handleTripOpened(e)
	case subscriptionStarted:
		c.handleSubscriptionStarted(e)
	case membersFetched:
		c.handleMembersFetched(e)

	// Location.
	case LocationSample:
		c.handleLocationSample(e)

	// Search and directions.
	case QueryChanged:
		c.clearError()
		c.handleQueryChanged(fieldDestination, e.Query)
	case StartQueryChanged:
		c.clearError()
		c.handleQueryChanged(fieldStart, e.Query)
	case debounceFired:
		c.handleDebounceFired(e)
	case suggestionsResolved:
		c.handleSuggestionsResolved(e)
	case SuggestionSelected:
		c.clearError()
		c.cancelFieldWork(fieldDestination)
		c.store.Update(func(s *State) {
			place := e.Place
			s.Destination = &place
			s.SearchQuery = ""
			s.Suggestions = nil
			s.Searching = false
			s.Mode = SearchIdle
		})
	case SearchSubmitted:
		c.clearError()
		c.handleSearchSubmitted()
	case destinationResolved:
		c.handleDestinationResolved(e)
	case ClearSearch:
		c.clearError()
		c.supersedeRoute()
		c.cancelFieldWork(fieldDestination)
		c.cancelFieldWork(fieldStart)
		c.store.ResetNavigation()
	case DirectionsOpened:
		c.clearError()
		c.store.Update(func(s *State) { s.Mode = DirectionsChoosingStart })
	case DirectionsDismissed:
		c.clearError()
		c.cancelFieldWork(fieldStart)
		c.store.Update(func(s *State) {
			s.Mode = SearchIdle
			s.StartQuery = ""
			s.StartSuggestions = nil
			s.StartSearching = false
		})
	case StartSuggestionSelected:
		c.clearError()
		c.cancelFieldWork(fieldStart)
		c.store.Update(func(s *State) {
			s.StartQuery = e.Place.DisplayName
			s.StartSuggestions = nil
		})
	case StartFromCurrentLocation:
		c.clearError()
		c.handleStartFromCurrentLocation()
	case StartSearchSubmitted:
		c.clearError()
		c.handleStartSearchSubmitted()
	case startResolved:
		c.handleStartResolved(e)

	// Route.
	case routeResolved:
		c.handleRouteResolved(e)
	case routeFrame:
		if e.gen == c.routeGen {
			c.store.Update(func(s *State) { s.RevealedPoints = e.points })
		}
	case routeSettled:
		if e.gen == c.routeGen {
			c.store.Update(func(s *State) { s.RoutePhase = RouteSettled })
		}

	case RecenterRequested:
		c.store.Update(func(s *State) { s.RecenterRequests++ })
	}
}

func (c *Coordinator) clearError() {
	c.store.Update(func(s *State) { s.ErrorMessage = "" })
}

func (c *Coordinator) setError(message string) {
	c.store.Update(func(s *State) { s.ErrorMessage = message })
}

// send re-enters the loop from an async worker without blocking past
// shutdown.
func (c *Coordinator) send(event Event) {
	select {
	case c.events <- event:
	case <-c.ctx.Done():
	}
}

// Trip lifecycle -------------------------------------------------------------

func (c *Coordinator) handleCreateTrip(e CreateTrip) {
	if c.store.Snapshot().Trip != nil {
		return
	}

	go func() {
		trip, err := c.cfg.Repository.CreateTrip(c.ctx, c.cfg.UserID, e.DisplayName)
		c.send(tripOpened{trip: trip, err: err})
	}()
}

func (c *Coordinator) handleJoinTrip(e JoinTrip) {
	if c.store.Snapshot().Trip != nil {
		return
	}

	go func() {
		trip, err := c.cfg.Repository.JoinTrip(c.ctx, e.TripCode, c.cfg.UserID, e.DisplayName)
		c.send(tripOpened{trip: trip, err: err})
	}()
}

func (c *Coordinator) handleTripOpened(e tripOpened) {
	if e.err != nil {
		if errors.Is(e.err, domain.ErrTripNotFound) {
			c.setError(msgTripNotFound)
		} else {
			c.cfg.Logger.Error("trip open failed", zap.Error(e.err))
			c.setError(msgTripFailed)
		}
		return
	}

	trip := e.trip
	c.store.Update(func(s *State) {
		s.Trip = &trip
		s.SubscriptionActive = false
		s.Members = nil
		s.Nearby = nil
		s.LastTransmitted = nil
	})

	tripCtx, cancel := context.WithCancel(c.ctx)
	c.tripCancel = cancel
	c.startSync(tripCtx, trip.ID)

	// Push the current fix right away so other members see the newcomer
	// without waiting for movement.
	if location := c.store.Snapshot().OwnLocation; location != nil {
		c.pushLocation(trip.ID, *location)
	}
}

// startSync wires the re-fetch-on-notify loop for one trip: a coalescing
// capacity-1 signal channel feeds a single fetch-and-replace worker, so a
// burst of notifications produces at most one queued re-fetch and a
// notification arriving mid-fetch is never lost.
func (c *Coordinator) startSync(tripCtx context.Context, tripID string) {
	signal := make(chan struct{}, 1)
	// Seed the initial snapshot fetch; until the subscription ack
	// arrives this is what populates the roster.
	signal <- struct{}{}

	c.wg.Add(2)

	go func() {
		defer c.wg.Done()
		defer close(signal)

		subscription, err := c.cfg.Bridge.Subscribe(tripCtx, tripID)
		if err != nil {
			c.cfg.Logger.Warn("realtime subscription failed",
				zap.String("trip_id", tripID), zap.Error(err))
			<-tripCtx.Done()
			return
		}
		defer subscription.Close()

		c.send(subscriptionStarted{tripID: tripID})

		for {
			select {
			case <-tripCtx.Done():
				return
			case _, open := <-subscription.Changes():
				if !open {
					return
				}
				select {
				case signal <- struct{}{}:
				default:
				}
			}
		}
	}()

	go func() {
		defer c.wg.Done()

		for range signal {
			members, err := c.cfg.Repository.FetchMembers(tripCtx, tripID)
			if err != nil {
				if tripCtx.Err() == nil {
					c.cfg.Logger.Warn("member fetch failed",
						zap.String("trip_id", tripID), zap.Error(err))
				}
				continue
			}
			c.send(membersFetched{tripID: tripID, members: members})
		}
	}()
}

func (c *Coordinator) handleSubscriptionStarted(e subscriptionStarted) {
	c.store.Update(func(s *State) {
		if s.Trip != nil && s.Trip.ID == e.tripID {
			s.SubscriptionActive = true
		}
	})
}

func (c *Coordinator) handleMembersFetched(e membersFetched) {
	c.store.Update(func(s *State) {
		if s.Trip == nil || s.Trip.ID != e.tripID {
			// Stale fetch from a trip already left.
			return
		}

		members := make(map[string]domain.Member, len(e.members))
		positions := make(map[string]geo.Coordinate, len(e.members))
		for _, member := range e.members {
			members[member.UserID] = member
			if member.HasLocation() {
				positions[member.UserID] = geo.Coordinate{
					Latitude:  *member.Latitude,
					Longitude: *member.Longitude,
				}
			}
		}

		s.Members = members
		s.Nearby = geo.NearbyGroups(positions)
	})
}

func (c *Coordinator) handleLeaveTrip() {
	snapshot := c.store.Snapshot()
	if snapshot.Trip == nil {
		return
	}
	tripID := snapshot.Trip.ID

	c.teardownTrip()
	c.store.ResetTrip()

	// Best effort: the local exit always proceeds, a failed remote leave
	// is logged and forgotten. The membership row goes stale until the
	// user re-joins.
	go func() {
		if err := c.cfg.Repository.LeaveTrip(c.ctx, tripID, c.cfg.UserID); err != nil {
			c.cfg.Logger.Warn("remote leave failed",
				zap.String("trip_id", tripID), zap.Error(err))
		}
	}()
}

func (c *Coordinator) teardownTrip() {
	if c.tripCancel != nil {
		c.tripCancel()
		c.tripCancel = nil
	}
}

// Location -------------------------------------------------------------------

func (c *Coordinator) handleLocationSample(e LocationSample) {
	sample := e.Location

	var push bool
	var tripID string

	c.store.Update(func(s *State) {
		s.OwnLocation = &sample

		if s.Trip == nil {
			return
		}

		if geo.ShouldTransmit(s.LastTransmitted, sample) {
			// Baseline advances before the push outcome is known:
			// a failed push loses this movement instead of being
			// retried, which keeps the throttle simple and the
			// loss bounded by the threshold.
			s.LastTransmitted = &sample
			push = true
			tripID = s.Trip.ID
		}
	})

	if push {
		c.pushLocation(tripID, sample)
	}
}

func (c *Coordinator) pushLocation(tripID string, location geo.Coordinate) {
	go func() {
		err := c.cfg.Repository.UpdateLocation(
			c.ctx,
			tripID,
			c.cfg.UserID,
			location.Latitude,
			location.Longitude,
		)
		if err != nil && c.ctx.Err() == nil {
			c.cfg.Logger.Warn("location push failed",
				zap.String("trip_id", tripID), zap.Error(err))
		}
	}()
}

// Search ---------------------------------------------------------------------

func (c *Coordinator) handleQueryChanged(field searchField, query string) {
	// Typing in one field supersedes pending lookups for both: the user
	// has moved on, and a late result for the other field would land on a
	// box they are no longer looking at.
	c.cancelFieldWork(fieldDestination)
	c.cancelFieldWork(fieldStart)

	loading := len([]rune(query)) >= minQueryLength

	c.store.Update(func(s *State) {
		switch field {
		case fieldDestination:
			s.SearchQuery = query
			s.Searching = loading
			s.Mode = Searching
			if !loading {
				s.Suggestions = nil
			}
		case fieldStart:
			s.StartQuery = query
			s.StartSearching = loading
			if !loading {
				s.StartSuggestions = nil
			}
		}
	})

	if !loading {
		return
	}

	gen := c.searchGen[field]
	time.AfterFunc(c.cfg.Debounce, func() {
		c.send(debounceFired{field: field, gen: gen, query: query})
	})
}

// cancelFieldWork supersedes the field's pending debounce timer and any
// in-flight suggestion fetch by bumping its generation.
func (c *Coordinator) cancelFieldWork(field searchField) {
	c.searchGen[field]++
	if c.searchCancel[field] != nil {
		c.searchCancel[field]()
		c.searchCancel[field] = nil
	}
}

func (c *Coordinator) handleDebounceFired(e debounceFired) {
	if e.gen != c.searchGen[e.field] {
		// A newer keystroke superseded this timer.
		return
	}

	ctx, cancel := context.WithCancel(c.ctx)
	c.searchCancel[e.field] = cancel

	go func() {
		places, err := c.cfg.Search.Search(ctx, e.query)
		if ctx.Err() != nil {
			return
		}
		c.send(suggestionsResolved{field: e.field, gen: e.gen, places: places, err: err})
	}()
}

func (c *Coordinator) handleSuggestionsResolved(e suggestionsResolved) {
	if e.gen != c.searchGen[e.field] {
		return
	}

	places := e.places
	if e.err != nil {
		// Suggestion failures degrade to an empty list rather than
		// interrupting typing.
		c.cfg.Logger.Warn("suggestion lookup failed", zap.Error(e.err))
		places = nil
	}

	c.store.Update(func(s *State) {
		switch e.field {
		case fieldDestination:
			s.Suggestions = places
			s.Searching = false
		case fieldStart:
			s.StartSuggestions = places
			s.StartSearching = false
		}
	})
}

func (c *Coordinator) handleSearchSubmitted() {
	query := c.store.Snapshot().SearchQuery
	if query == "" {
		return
	}

	c.cancelFieldWork(fieldDestination)

	go func() {
		places, err := c.cfg.Search.Search(c.ctx, query)
		if c.ctx.Err() != nil {
			return
		}
		c.send(destinationResolved{places: places, err: err})
	}()
}

func (c *Coordinator) handleDestinationResolved(e destinationResolved) {
	if e.err != nil {
		c.cfg.Logger.Warn("destination lookup failed", zap.Error(e.err))
		c.setError(msgSearchFailed)
		return
	}

	if len(e.places) == 0 {
		c.setError(msgNoResults)
		return
	}

	place := e.places[0]
	c.store.Update(func(s *State) {
		s.Destination = &place
		s.SearchQuery = ""
		s.Suggestions = nil
		s.Searching = false
		s.Mode = SearchIdle
	})
}

// Directions -----------------------------------------------------------------

func (c *Coordinator) handleStartFromCurrentLocation() {
	snapshot := c.store.Snapshot()

	if snapshot.OwnLocation == nil {
		c.setError(msgWaitingForGPS)
		return
	}

	if snapshot.Destination == nil {
		c.setError(msgNoDestination)
		return
	}

	start := *snapshot.OwnLocation
	end := geo.Coordinate{
		Latitude:  snapshot.Destination.Latitude,
		Longitude: snapshot.Destination.Longitude,
	}

	c.store.Update(func(s *State) { s.Mode = SearchIdle })
	c.requestRoute(start, end)
}

func (c *Coordinator) handleStartSearchSubmitted() {
	snapshot := c.store.Snapshot()

	if snapshot.StartQuery == "" {
		return
	}

	if snapshot.Destination == nil {
		c.setError(msgNoDestination)
		return
	}

	c.cancelFieldWork(fieldStart)
	query := snapshot.StartQuery

	go func() {
		places, err := c.cfg.Search.Search(c.ctx, query)
		if c.ctx.Err() != nil {
			return
		}
		c.send(startResolved{places: places, err: err})
	}()
}

func (c *Coordinator) handleStartResolved(e startResolved) {
	if e.err != nil {
		c.cfg.Logger.Warn("start lookup failed", zap.Error(e.err))
		c.setError(msgSearchFailed)
		return
	}

	if len(e.places) == 0 {
		c.setError(msgNoResults)
		return
	}

	snapshot := c.store.Snapshot()
	if snapshot.Destination == nil {
		c.setError(msgNoDestination)
		return
	}

	start := geo.Coordinate{Latitude: e.places[0].Latitude, Longitude: e.places[0].Longitude}
	end := geo.Coordinate{
		Latitude:  snapshot.Destination.Latitude,
		Longitude: snapshot.Destination.Longitude,
	}

	c.store.Update(func(s *State) { s.Mode = SearchIdle })
	c.requestRoute(start, end)
}

// Route ----------------------------------------------------------------------

// requestRoute supersedes any in-flight route fetch or reveal animation and
// starts a new fetch.
func (c *Coordinator) requestRoute(start, end geo.Coordinate) {
	c.supersedeRoute()
	gen := c.routeGen

	ctx, cancel := context.WithCancel(c.ctx)
	c.routeCancel = cancel

	go func() {
		r, err := c.cfg.Routes.GetRoute(ctx, start, end)
		if ctx.Err() != nil {
			return
		}
		c.send(routeResolved{gen: gen, r: r, err: err})
	}()
}

func (c *Coordinator) supersedeRoute() {
	c.routeGen++
	if c.routeCancel != nil {
		c.routeCancel()
		c.routeCancel = nil
	}
}

func (c *Coordinator) handleRouteResolved(e routeResolved) {
	if e.gen != c.routeGen {
		return
	}

	if e.err != nil {
		c.cfg.Logger.Warn("route fetch failed", zap.Error(e.err))
		c.setError(msgRouteFetchFailed)
		return
	}

	resolved := e.r
	c.store.Update(func(s *State) {
		// The full route lands in state immediately so the camera can
		// fit-to-bounds without waiting for the animation.
		s.Route = &resolved
		s.RevealedPoints = nil
		s.RoutePhase = RouteAnimating
	})

	ctx, cancel := context.WithCancel(c.ctx)
	c.routeCancel = cancel
	gen := e.gen

	go func() {
		for prefix := range route.Reveal(ctx, resolved.Points, c.cfg.RevealStep) {
			c.send(routeFrame{gen: gen, points: prefix})
		}
		if ctx.Err() == nil {
			c.send(routeSettled{gen: gen})
		}
	}()
}
