package main

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/karwaan/tripsync/internal/modules/trip/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type createTripRequest struct {
	DisplayName string `json:"display_name"`
}

type joinTripRequest struct {
	TripCode    int    `json:"trip_code"`
	DisplayName string `json:"display_name"`
}

type updateLocationRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func expectStatus(t *testing.T, expected int) responseAssertion {
	t.Helper()
	return func(resp *http.Response) {
		require.Equal(t, expected, resp.StatusCode)
	}
}

func createTrip(t *testing.T, deviceID, displayName string) domain.Trip {
	t.Helper()

	trip, err := sendRequest[createTripRequest, domain.Trip](
		fixture.client,
		fmt.Sprintf("%s/trips", fixture.baseURL),
		http.MethodPost,
		deviceID,
		createTripRequest{DisplayName: displayName},
		expectStatus(t, http.StatusCreated),
	)
	require.NoError(t, err)
	require.NotEmpty(t, trip.ID)

	return trip
}

func getMembers(t *testing.T, deviceID, tripID string) []domain.Member {
	t.Helper()

	members, err := sendRequest[struct{}, []domain.Member](
		fixture.client,
		fmt.Sprintf("%s/trips/%s/members", fixture.baseURL, tripID),
		http.MethodGet,
		deviceID,
		struct{}{},
		expectStatus(t, http.StatusOK),
	)
	require.NoError(t, err)

	return members
}

func Test_CreateTrip_Returns_Trip_With_Join_Code_And_Host_Membership(t *testing.T) {
	// Arrange
	deviceID := uuid.NewString()

	// Act
	trip := createTrip(t, deviceID, "Host")

	// Assert
	require.GreaterOrEqual(t, trip.TripCode, 100000)
	require.LessOrEqual(t, trip.TripCode, 999999)
	require.Equal(t, deviceID, trip.HostID)
	require.True(t, trip.IsActive)

	members := getMembers(t, deviceID, trip.ID)
	require.Len(t, members, 1)
	require.Equal(t, deviceID, members[0].UserID)
	require.Equal(t, "Host", members[0].DisplayName)
	require.Contains(t, domain.MarkerPalette, members[0].MarkerColor)
}

func Test_CreateTrip_Returns_401_Without_Device_Header(t *testing.T) {
	// Act
	_, err := sendRequest[createTripRequest, struct{}](
		fixture.client,
		fmt.Sprintf("%s/trips", fixture.baseURL),
		http.MethodPost,
		"",
		createTripRequest{DisplayName: "Host"},
		expectStatus(t, http.StatusUnauthorized),
	)

	// Assert
	require.NoError(t, err)
}

func Test_CreateTrip_Returns_400_When_DisplayName_Empty(t *testing.T) {
	// Act
	_, err := sendRequest[createTripRequest, struct{}](
		fixture.client,
		fmt.Sprintf("%s/trips", fixture.baseURL),
		http.MethodPost,
		uuid.NewString(),
		createTripRequest{DisplayName: ""},
		expectStatus(t, http.StatusBadRequest),
	)

	// Assert
	require.NoError(t, err)
}

func Test_CreateTrip_Truncates_Long_Display_Name(t *testing.T) {
	// Arrange
	deviceID := uuid.NewString()

	// Act
	trip := createTrip(t, deviceID, "Alexandria the Great")

	// Assert
	members := getMembers(t, deviceID, trip.ID)
	require.Len(t, members, 1)
	require.Equal(t, "Alexandria", members[0].DisplayName)
}

func Test_JoinTrip_Adds_Member_To_Roster(t *testing.T) {
	// Arrange
	hostID := uuid.NewString()
	guestID := uuid.NewString()
	trip := createTrip(t, hostID, "Host")

	// Act
	joined, err := sendRequest[joinTripRequest, domain.Trip](
		fixture.client,
		fmt.Sprintf("%s/trips/actions/join", fixture.baseURL),
		http.MethodPost,
		guestID,
		joinTripRequest{TripCode: trip.TripCode, DisplayName: "Guest"},
		expectStatus(t, http.StatusOK),
	)

	// Assert
	require.NoError(t, err)
	require.Equal(t, trip.ID, joined.ID)

	members := getMembers(t, guestID, trip.ID)
	require.Len(t, members, 2)
}

func Test_JoinTrip_Returns_404_For_Unknown_Code(t *testing.T) {
	// Arrange
	deviceID := uuid.NewString()
	trip := createTrip(t, deviceID, "Host")

	unknownCode := trip.TripCode + 1
	if unknownCode > 999999 {
		unknownCode = 100000
	}

	// Act
	_, err := sendRequest[joinTripRequest, struct{}](
		fixture.client,
		fmt.Sprintf("%s/trips/actions/join", fixture.baseURL),
		http.MethodPost,
		uuid.NewString(),
		joinTripRequest{TripCode: unknownCode, DisplayName: "Guest"},
		expectStatus(t, http.StatusNotFound),
	)

	// Assert
	require.NoError(t, err)
}

func Test_JoinTrip_Is_Idempotent_For_Same_Device(t *testing.T) {
	// Arrange
	hostID := uuid.NewString()
	guestID := uuid.NewString()
	trip := createTrip(t, hostID, "Host")

	join := joinTripRequest{TripCode: trip.TripCode, DisplayName: "Guest"}

	// Act
	for i := 0; i < 2; i++ {
		_, err := sendRequest[joinTripRequest, domain.Trip](
			fixture.client,
			fmt.Sprintf("%s/trips/actions/join", fixture.baseURL),
			http.MethodPost,
			guestID,
			join,
			expectStatus(t, http.StatusOK),
		)
		require.NoError(t, err)
	}

	// Assert
	members := getMembers(t, guestID, trip.ID)
	require.Len(t, members, 2)
}

func Test_LeaveTrip_Removes_Member_And_Rejoin_Reactivates(t *testing.T) {
	// Arrange
	hostID := uuid.NewString()
	guestID := uuid.NewString()
	trip := createTrip(t, hostID, "Host")

	_, err := sendRequest[joinTripRequest, domain.Trip](
		fixture.client,
		fmt.Sprintf("%s/trips/actions/join", fixture.baseURL),
		http.MethodPost,
		guestID,
		joinTripRequest{TripCode: trip.TripCode, DisplayName: "Guest"},
		expectStatus(t, http.StatusOK),
	)
	require.NoError(t, err)

	// Act
	_, err = sendRequest[struct{}, struct{}](
		fixture.client,
		fmt.Sprintf("%s/trips/%s/actions/leave", fixture.baseURL, trip.ID),
		http.MethodPut,
		guestID,
		struct{}{},
		expectStatus(t, http.StatusOK),
	)
	require.NoError(t, err)

	// Assert
	members := getMembers(t, hostID, trip.ID)
	require.Len(t, members, 1)
	require.Equal(t, hostID, members[0].UserID)

	// Re-joining reactivates the same membership under the new name.
	_, err = sendRequest[joinTripRequest, domain.Trip](
		fixture.client,
		fmt.Sprintf("%s/trips/actions/join", fixture.baseURL),
		http.MethodPost,
		guestID,
		joinTripRequest{TripCode: trip.TripCode, DisplayName: "Guest Two"},
		expectStatus(t, http.StatusOK),
	)
	require.NoError(t, err)

	members = getMembers(t, hostID, trip.ID)
	require.Len(t, members, 2)

	byUser := map[string]domain.Member{}
	for _, m := range members {
		byUser[m.UserID] = m
	}
	require.Equal(t, "Guest Two", byUser[guestID].DisplayName)
}

func Test_UpdateLocation_Is_Visible_In_Member_List(t *testing.T) {
	// Arrange
	deviceID := uuid.NewString()
	trip := createTrip(t, deviceID, "Host")

	// Act
	_, err := sendRequest[updateLocationRequest, struct{}](
		fixture.client,
		fmt.Sprintf("%s/trips/%s/location", fixture.baseURL, trip.ID),
		http.MethodPut,
		deviceID,
		updateLocationRequest{Latitude: 45.815, Longitude: 15.9819},
		expectStatus(t, http.StatusOK),
	)
	require.NoError(t, err)

	// Assert
	members := getMembers(t, deviceID, trip.ID)
	require.Len(t, members, 1)
	require.NotNil(t, members[0].Latitude)
	require.NotNil(t, members[0].Longitude)
	require.InDelta(t, 45.815, *members[0].Latitude, 0.0001)
	require.InDelta(t, 15.9819, *members[0].Longitude, 0.0001)
	require.NotNil(t, members[0].LastUpdated)
}

func Test_UpdateLocation_Returns_400_For_Invalid_Coordinates(t *testing.T) {
	// Arrange
	deviceID := uuid.NewString()
	trip := createTrip(t, deviceID, "Host")

	// Act
	_, err := sendRequest[updateLocationRequest, struct{}](
		fixture.client,
		fmt.Sprintf("%s/trips/%s/location", fixture.baseURL, trip.ID),
		http.MethodPut,
		deviceID,
		updateLocationRequest{Latitude: 91.0, Longitude: 0},
		expectStatus(t, http.StatusBadRequest),
	)

	// Assert
	require.NoError(t, err)
}
