package queries

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/karwaan/tripsync/internal/modules/trip/domain"

	"github.com/eskrenkovic/tql"
)

type GetMembersQuery struct {
	TripID string
}

func (q GetMembersQuery) Validate() error {
	if q.TripID == "" {
		return fmt.Errorf("invalid TripID - '%s'", q.TripID)
	}

	return nil
}

type GetMembersQueryHandler struct {
	db *sql.DB
}

func NewGetMembersQueryHandler(db *sql.DB) *GetMembersQueryHandler {
	return &GetMembersQueryHandler{db}
}

// Handle returns the full active-member snapshot for a trip. Every re-sync
// replaces the client roster with this result wholesale.
func (h *GetMembersQueryHandler) Handle(
	ctx context.Context,
	request GetMembersQuery,
) ([]domain.Member, error) {
	const query = `
		SELECT
			*
		FROM
			members
		WHERE
			trip_id = $1 AND is_active = true
		ORDER BY
			display_name;`
	return tql.Query[domain.Member](ctx, h.db, query, request.TripID)
}
