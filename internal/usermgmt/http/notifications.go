package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/usermgmt/internal/usermgmt/notify"
	"github.com/aussiebroadwan/usermgmt/pkg/slogx"
)

const keepAliveInterval = 25 * time.Second

// NotificationsHandler streams admin notifications as server-sent events.
type NotificationsHandler struct {
	Hub *notify.Hub
}

// ServeHTTP godoc
//
//	@Summary		Admin notification stream
//	@Description	Server-sent events. Each event has the id of the notification, an event name of ReceiveNotification or ReceiveUserNotification, and the notification as JSON data.
//	@Tags			Notifications
//	@Produce		text/event-stream
//	@Success		200	{string}	string	"event stream"
//	@Failure		403	{object}	httpx.Envelope	"Admin token required"
//	@Security		BearerAuth
//	@Router			/hubs/notifications [get].
func (h *NotificationsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := slogx.FromContext(ctx)

	events, cancel := h.Hub.Subscribe()
	defer cancel()

	rc := http.NewResponseController(w)
	// The server write timeout would cut the stream otherwise
	_ = rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if _, err := fmt.Fprint(w, ": connected\n\n"); err != nil {
		return
	}
	if err := rc.Flush(); err != nil {
		l.Warn("event stream not flushable", slog.Any("error", err))
		return
	}

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
		case e, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(e)
			if err != nil {
				l.Error("failed to encode event", slog.Any("error", err))
				continue
			}
			if _, err := fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", e.ID, e.Channel(), data); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}
