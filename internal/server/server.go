package server

import (
	"context"
	"database/sql"
	"net"
	"net/http"
	"strconv"

	"github.com/karwaan/tripsync/internal/config"
	"github.com/karwaan/tripsync/internal/modules/core"
	"github.com/karwaan/tripsync/internal/modules/trip"
	tripcommands "github.com/karwaan/tripsync/internal/modules/trip/commands"
	tripdomain "github.com/karwaan/tripsync/internal/modules/trip/domain"
	tripqueries "github.com/karwaan/tripsync/internal/modules/trip/queries"
	"github.com/karwaan/tripsync/internal/realtime"

	"github.com/eskrenkovic/mediator-go"
	"github.com/eskrenkovic/migrate-go"
	"github.com/go-chi/chi"
	"github.com/go-redis/redis/v8"
	_ "github.com/lib/pq"
)

type Server interface {
	Start() error
	Stop() error
}

var _ Server = &HTTPServer{}

// HTTPServer acts as the composition root for the trip service.
type HTTPServer struct {
	server *http.Server
	db     *sql.DB
	redis  *redis.Client
}

func NewHTTPServer(config config.Config) (Server, error) {
	baseCtx := context.Background()

	db, err := sql.Open("postgres", config.DatabaseURL)
	if err != nil {
		return nil, err
	}

	if err := migrate.Run(baseCtx, db, config.MigrationsPath); err != nil {
		return nil, err
	}

	redisClient := redis.NewClient(&redis.Options{Addr: config.RedisAddr})
	bridge := realtime.NewRedisBridge(redisClient)

	requestLoggingBehavior := core.RequestLoggingBehavior{Logger: config.Logger}
	handlerErrorLoggingBehavior := core.HandlerErrorLoggingBehavior{Logger: config.Logger}
	requestValidationBehavior := core.RequestValidationBehavior{}

	mediator.RegisterPipelineBehavior(&requestLoggingBehavior)
	mediator.RegisterPipelineBehavior(&handlerErrorLoggingBehavior)
	mediator.RegisterPipelineBehavior(&requestValidationBehavior)

	// handler registration

	createTripHandler := tripcommands.NewCreateTripCommandHandler(db, bridge)
	err = mediator.RegisterRequestHandler[tripcommands.CreateTripCommand, tripdomain.Trip](createTripHandler)
	if err != nil {
		return nil, err
	}

	joinTripHandler := tripcommands.NewJoinTripCommandHandler(db, bridge)
	err = mediator.RegisterRequestHandler[tripcommands.JoinTripCommand, tripdomain.Trip](joinTripHandler)
	if err != nil {
		return nil, err
	}

	leaveTripHandler := tripcommands.NewLeaveTripCommandHandler(db, bridge)
	err = mediator.RegisterRequestHandler[tripcommands.LeaveTripCommand, core.Unit](leaveTripHandler)
	if err != nil {
		return nil, err
	}

	updateLocationHandler := tripcommands.NewUpdateLocationCommandHandler(db, bridge)
	err = mediator.RegisterRequestHandler[tripcommands.UpdateLocationCommand, core.Unit](updateLocationHandler)
	if err != nil {
		return nil, err
	}

	getMembersHandler := tripqueries.NewGetMembersQueryHandler(db)
	err = mediator.RegisterRequestHandler[tripqueries.GetMembersQuery, []tripdomain.Member](getMembersHandler)
	if err != nil {
		return nil, err
	}

	// http

	tripHandler := trip.NewTripHTTPHandler()
	eventsHandler := NewTripEventsHandler(bridge, config.Logger)

	router := chi.NewRouter()
	router.Use(core.LoggerHTTPMiddleware(config.Logger))
	router.Use(core.CorrelationIDHTTPMiddleware)
	router.Use(core.DeviceIdentityMiddleware)

	router.Post("/trips", tripHandler.HandleCreateTrip)
	router.Post("/trips/actions/join", tripHandler.HandleJoinTrip)
	router.Put("/trips/{id}/actions/leave", tripHandler.HandleLeaveTrip)
	router.Put("/trips/{id}/location", tripHandler.HandleUpdateLocation)
	router.Get("/trips/{id}/members", tripHandler.HandleGetMembers)
	router.Get("/trips/{id}/events", eventsHandler.HandleTripEvents)

	server := http.Server{
		Addr:    net.JoinHostPort("", strconv.Itoa(config.Port)),
		Handler: router,
	}

	return &HTTPServer{server: &server, db: db, redis: redisClient}, nil
}

func (s *HTTPServer) Start() error {
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

func (s *HTTPServer) Stop() error {
	if err := s.server.Close(); err != nil {
		return err
	}

	if err := s.redis.Close(); err != nil {
		return err
	}

	return s.db.Close()
}
