package http

import (
	"net/http"
	"time"

	httpmw "github.com/bkbimal250/chat-service/internal/transport/http/middleware"
	"github.com/bkbimal250/chat-service/internal/transport/ws"

	"github.com/go-chi/chi/v5"
	middlewareChi "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(h *Handler, tokens httpmw.TokenValidator, wsServer *ws.Server) http.Handler {
	r := chi.NewRouter()
	r.Use(middlewareChi.RequestID)
	r.Use(middlewareChi.RealIP)
	r.Use(middlewareChi.Recoverer)

	// WS endpoint authenticates itself via the token query param
	r.Get("/ws/chat/{user_id}", wsServer.HandleWS)

	r.Group(func(pr chi.Router) {
		pr.Use(httpmw.AuthMiddleware(tokens))
		pr.Use(httpmw.MetricsMiddleware)
		pr.Use(middlewareChi.Timeout(30 * time.Second))

		pr.Route("/chat", func(cr chi.Router) {
			cr.Get("/conversations", h.Conversations)
			cr.Get("/conversations/{user_id}/messages", h.Messages)

			cr.Route("/messages", func(mr chi.Router) {
				mr.Get("/unread-count", h.UnreadCount)
				mr.Post("/mark-read", h.MarkRead)
				mr.Patch("/{id}", h.EditMessage)
				mr.Delete("/{id}", h.DeleteMessage)
			})

			cr.Route("/notifications", func(nr chi.Router) {
				nr.Get("/", h.Notifications)
				nr.Post("/mark-all-read", h.NotificationsMarkAllRead)
				nr.Get("/unread-count", h.NotificationsUnreadCount)
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return r
}
