package domain

import (
	"errors"
	"math/rand"
)

var (
	// ErrTripNotFound - no active trip matches the supplied join code.
	ErrTripNotFound = errors.New("trip not found")

	// ErrTripNotCreated - the trip/host-membership insert pair failed.
	ErrTripNotCreated = errors.New("trip not created")
)

type Trip struct {
	ID       string `db:"id" json:"id"`
	TripCode int    `db:"trip_code" json:"trip_code"`
	HostID   string `db:"host_id" json:"host_id"`
	IsActive bool   `db:"is_active" json:"is_active"`
}

const (
	joinCodeMin = 100000
	joinCodeMax = 999999
)

// NewJoinCode returns a random 6-digit trip code. Collisions among active
// trips are treated as acceptably rare and are not retried; the unique
// constraint on the table surfaces the loss instead of hiding it.
func NewJoinCode() int {
	return joinCodeMin + rand.Intn(joinCodeMax-joinCodeMin+1)
}
