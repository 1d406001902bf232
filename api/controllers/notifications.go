package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/omnicart-backend/api/responses"
	"github.com/angelmondragon/omnicart-backend/internal/notifications"
	pkgerrors "github.com/angelmondragon/omnicart-backend/pkg/errors"
	"github.com/angelmondragon/omnicart-backend/pkg/logger"
)

const streamHeartbeat = 15 * time.Second

type notificationFeed interface {
	Active(session string) []notifications.Notification
	Dismiss(session, id string) bool
	Subscribe(session string) (<-chan notifications.Event, func())
}

// NotificationsList returns the visitor's visible notifications, oldest first.
func NotificationsList(feed notificationFeed, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := visitorSession(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"notifications": feed.Active(session)})
	}
}

// NotificationDismiss closes a notification before it expires.
func NotificationDismiss(feed notificationFeed, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := visitorSession(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !feed.Dismiss(session, chi.URLParam(r, "notificationId")) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "notification not found"))
			return
		}
		responses.WriteSuccess(w, map[string]bool{"dismissed": true})
	}
}

// NotificationsStream pushes shown and dismissed events as server-sent events.
// The currently visible notifications are replayed first.
func NotificationsStream(feed notificationFeed, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := visitorSession(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rc := http.NewResponseController(w)
		// The stream outlives the server's WriteTimeout.
		if err := rc.SetWriteDeadline(time.Time{}); err != nil && logg != nil {
			logg.Warn(logg.WithField(r.Context(), "error", err.Error()), "notification stream keeps the server write deadline")
		}

		events, cancel := feed.Subscribe(session)
		defer cancel()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)

		for _, n := range feed.Active(session) {
			if err := writeEvent(w, notifications.Event{Type: notifications.EventShown, Notification: n}); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			if logg != nil {
				logg.Warn(logg.WithField(r.Context(), "error", err.Error()), "notification stream cannot flush")
			}
			return
		}

		heartbeat := time.NewTicker(streamHeartbeat)
		defer heartbeat.Stop()
		for {
			select {
			case <-r.Context().Done():
				return
			case <-heartbeat.C:
				if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
					return
				}
			case evt, ok := <-events:
				if !ok {
					return
				}
				if err := writeEvent(w, evt); err != nil {
					return
				}
			}
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}

func writeEvent(w http.ResponseWriter, evt notifications.Event) error {
	payload, err := json.Marshal(evt.Notification)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\nid: %s\ndata: %s\n\n", evt.Type, evt.Notification.ID, payload)
	return err
}
