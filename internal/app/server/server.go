package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/TruyenGau/sosialNetwork-backend/internal/app/registry"
	"github.com/TruyenGau/sosialNetwork-backend/internal/app/server/handlers"
	"github.com/TruyenGau/sosialNetwork-backend/internal/core/services"
	"github.com/TruyenGau/sosialNetwork-backend/pkg/middleware"
)

type Server struct {
	log          *slog.Logger
	mux          *http.ServeMux
	app          string
	addr         string
	tokenSvc     *services.TokenService
	wsHandler    *handlers.WSHandler
	chatHandler  *handlers.ChatHandler
	notifHandler *handlers.NotificationHandler
}

func NewServer(
	log *slog.Logger,
	app string,
	addr string,
	tokenSvc *services.TokenService,
	hub *registry.Registry,
	convSvc *services.ConversationService,
	msgSvc *services.MessageService,
	notifSvc *services.NotificationService,
	presenceSvc *services.PresenceService,
) *Server {
	s := &Server{
		log:          log,
		mux:          http.NewServeMux(),
		app:          app,
		addr:         addr,
		tokenSvc:     tokenSvc,
		wsHandler:    handlers.NewWSHandler(log, hub, convSvc, msgSvc),
		chatHandler:  handlers.NewChatHandler(log, convSvc, msgSvc),
		notifHandler: handlers.NewNotificationHandler(log, notifSvc, presenceSvc),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	auth := middleware.AuthMiddleware(s.tokenSvc)

	protected := func(h http.HandlerFunc) http.Handler {
		return auth(h)
	}

	s.mux.Handle("/ws", protected(s.wsHandler.Handler))

	s.mux.Handle("GET /chat/rooms", protected(s.chatHandler.ListRooms))
	s.mux.Handle("POST /chat/private", protected(s.chatHandler.CreatePrivate))
	s.mux.Handle("POST /chat/groups", protected(s.chatHandler.CreateGroup))
	s.mux.Handle("POST /chat/members/add", protected(s.chatHandler.AddMembers))
	s.mux.Handle("POST /chat/members/remove", protected(s.chatHandler.RemoveMember))
	s.mux.Handle("GET /chat/pending", protected(s.chatHandler.ListPending))
	s.mux.Handle("POST /chat/pending/{roomID}/accept", protected(s.chatHandler.AcceptPending))
	s.mux.Handle("POST /chat/pending/{roomID}/reject", protected(s.chatHandler.RejectPending))
	s.mux.Handle("GET /chat/messages/{roomID}", protected(s.chatHandler.ListMessages))
	s.mux.Handle("POST /chat/read", protected(s.chatHandler.MarkRead))
	s.mux.Handle("GET /chat/unread/{roomID}", protected(s.chatHandler.UnreadCount))

	s.mux.Handle("GET /notifications", protected(s.notifHandler.List))
	s.mux.Handle("POST /notifications/{notificationID}/read", protected(s.notifHandler.MarkRead))

	s.mux.Handle("GET /users/online", protected(s.notifHandler.OnlineUsers))
}

// Start serves until ctx is cancelled, then drains in-flight requests.
// Long-lived websocket sessions are hijacked connections and close when their
// clients close or the process exits.
func (s *Server) Start(ctx context.Context) error {
	handler := middleware.TracerMiddleware(s.app)(middleware.RequestLogger(s.log)(s.mux))

	srv := &http.Server{
		Addr:        s.addr,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: it would sever websocket sessions.
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server listening", slog.String("addr", s.addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
