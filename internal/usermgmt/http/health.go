package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/usermgmt/internal/usermgmt/store"
	"github.com/aussiebroadwan/usermgmt/pkg/httpx"
	"github.com/aussiebroadwan/usermgmt/pkg/jwtx"
	"github.com/aussiebroadwan/usermgmt/pkg/usersdk"
)

// LivezHandler godoc
//
//	@Summary		Liveness probe
//	@Description	Always 200 while the process is serving.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	httpx.Envelope{data=usersdk.HealthResponse}
//	@Router			/livez [get].
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteEnvelope(w, http.StatusOK, "Service is alive", usersdk.HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		})
	}
}

// ReadyzHandler godoc
//
//	@Summary		Readiness probe
//	@Description	Checks the database connection and the token signer.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	httpx.Envelope{data=usersdk.HealthResponse}
//	@Failure		503	{object}	httpx.Envelope{data=usersdk.HealthResponse}	"A dependency is not ready"
//	@Router			/readyz [get].
func ReadyzHandler(startTime time.Time, version string, st store.Store, signer jwtx.Signer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &usersdk.HealthChecks{Database: "ok", Signer: "ok"}
		status, code, msg := "ok", http.StatusOK, "Service is ready"

		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			status, code, msg = "degraded", http.StatusServiceUnavailable, "Service is not ready"
		}
		if err := signer.Validate(); err != nil {
			checks.Signer = "error: " + err.Error()
			status, code, msg = "degraded", http.StatusServiceUnavailable, "Service is not ready"
		}

		httpx.WriteEnvelope(w, code, msg, usersdk.HealthResponse{
			Status:  status,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
