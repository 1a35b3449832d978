package core

import (
	"context"
	"net/http"
)

const DeviceIDHeader = "Device-Id"

const deviceIDContextKey contextKey = "device_id"

// DeviceID returns the caller's device identifier, or "" when the request
// carried none. There is no authentication behind it - a device id is a
// locally generated installation identifier, not a credential.
func DeviceID(ctx context.Context) string {
	if id, ok := ctx.Value(deviceIDContextKey).(string); ok {
		return id
	}
	return ""
}

func DeviceIdentityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		deviceID := r.Header.Get(DeviceIDHeader)
		if deviceID == "" {
			WriteUnauthorized(w, r, nil)
			return
		}

		ctx := context.WithValue(r.Context(), deviceIDContextKey, deviceID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
