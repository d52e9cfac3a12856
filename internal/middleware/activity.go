package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/domain"
	"github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/logger"
	"github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/utils"
)

const requestContextKey key = 100

type ActivityRecorder interface {
	Record(record domain.ActivityRecord)
}

// TrackActivity resolves the request's client IP and trace id, appends one
// row to the activity ledger and stores a RequestContext for downstream
// handlers. Ledger failures never fail the request.
func TrackActivity(recorder ActivityRecorder, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, err := utils.GetIP(r)
			if err != nil {
				logger.Log.Warn("could not resolve client ip", "error", err.Error())
			}

			rc := domain.RequestContext{
				IP:      ip,
				TraceId: uuid.NewString(),
				User:    GetUserFromContext(r),
				Admin:   GetAdminFromContext(r),
			}

			record := domain.ActivityRecord{
				IP:        ip,
				Action:    action,
				UserAgent: r.UserAgent(),
			}
			if rc.User != nil {
				record.UserId = &rc.User.Id
				record.Username = rc.User.Username
			}
			recorder.Record(record)

			ctx := context.WithValue(r.Context(), requestContextKey, rc)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetRequestContext retrieves the per-request context stored by
// TrackActivity. A zero value is returned when tracking did not run.
func GetRequestContext(r *http.Request) domain.RequestContext {
	rc, _ := r.Context().Value(requestContextKey).(domain.RequestContext)
	return rc
}
