package session

import (
	"sync"

	"github.com/karwaan/tripsync/internal/modules/geo"
	"github.com/karwaan/tripsync/internal/modules/search"
	"github.com/karwaan/tripsync/internal/modules/trip/domain"

	"github.com/karwaan/tripsync/internal/modules/route"
)

type SearchMode int

const (
	SearchIdle SearchMode = iota
	Searching
	DirectionsChoosingStart
)

type RoutePhase int

const (
	RouteNone RoutePhase = iota
	RouteAnimating
	RouteSettled
)

// State is the client-local session state. It is mutated only by the
// coordinator's event loop; everyone else sees immutable snapshots.
type State struct {
	UserID string

	Trip               *domain.Trip
	SubscriptionActive bool

	// OwnLocation always tracks the latest raw sample so the user's own
	// marker never lags the throttle. LastTransmitted is the throttle
	// baseline - the last coordinate actually pushed to the backend.
	OwnLocation     *geo.Coordinate
	LastTransmitted *geo.Coordinate

	// Members is replaced wholesale on every sync, never merged.
	Members map[string]domain.Member
	// Nearby maps each positioned member to the other members within
	// walking distance of them.
	Nearby map[string][]string

	Mode        SearchMode
	SearchQuery string
	Suggestions []search.Place
	Searching   bool
	Destination *search.Place

	StartQuery       string
	StartSuggestions []search.Place
	StartSearching   bool

	Route          *route.Route
	RevealedPoints []geo.Coordinate
	RoutePhase     RoutePhase

	ErrorMessage string

	// RecenterRequests is a monotonic counter the renderer watches to
	// re-center the camera on the user.
	RecenterRequests int
}

// Store owns State for the lifetime of a session. Mutations happen on the
// coordinator goroutine only; the lock exists so Snapshot can be called
// from any goroutine.
type Store struct {
	mu    sync.RWMutex
	state State
}

func NewStore(userID string) *Store {
	return &Store{state: State{UserID: userID}}
}

func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := s.state

	if s.state.Members != nil {
		snapshot.Members = make(map[string]domain.Member, len(s.state.Members))
		for id, member := range s.state.Members {
			snapshot.Members[id] = member
		}
	}

	if s.state.Nearby != nil {
		snapshot.Nearby = make(map[string][]string, len(s.state.Nearby))
		for id, near := range s.state.Nearby {
			snapshot.Nearby[id] = append([]string(nil), near...)
		}
	}

	snapshot.Suggestions = append([]search.Place(nil), s.state.Suggestions...)
	snapshot.StartSuggestions = append([]search.Place(nil), s.state.StartSuggestions...)
	snapshot.RevealedPoints = append([]geo.Coordinate(nil), s.state.RevealedPoints...)

	return snapshot
}

// Update applies one atomic state transform.
func (s *Store) Update(transform func(*State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	transform(&s.state)
}

// ResetTrip clears everything tied to an active trip membership while
// keeping identity and the local GPS fix.
func (s *Store) ResetTrip() {
	s.Update(func(state *State) {
		state.Trip = nil
		state.SubscriptionActive = false
		state.LastTransmitted = nil
		state.Members = nil
		state.Nearby = nil
	})
}

// ResetNavigation clears the search and route context.
func (s *Store) ResetNavigation() {
	s.Update(func(state *State) {
		state.Mode = SearchIdle
		state.SearchQuery = ""
		state.Suggestions = nil
		state.Searching = false
		state.Destination = nil
		state.StartQuery = ""
		state.StartSuggestions = nil
		state.StartSearching = false
		state.Route = nil
		state.RevealedPoints = nil
		state.RoutePhase = RouteNone
	})
}
