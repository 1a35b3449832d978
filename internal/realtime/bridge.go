package realtime

import "context"

// Notifier publishes "something changed" ticks for a trip's membership
// table. The payload deliberately carries no row data - consumers re-fetch a
// full snapshot instead of trusting deltas, so out-of-order delivery cannot
// tear the roster.
type Notifier interface {
	MembersChanged(ctx context.Context, tripID string) error
}

// Bridge subscribes to the per-trip change topic. Subscribe returns only
// after the subscription is acknowledged; until then the caller's initial
// snapshot fetch carries the load.
type Bridge interface {
	Subscribe(ctx context.Context, tripID string) (Subscription, error)
}

type Subscription interface {
	// Changes delivers one tick per observed change. The channel closes
	// when the subscription ends.
	Changes() <-chan struct{}
	Close() error
}
