// Package httpapi serves the dashboard fixtures and the chat conversation
// over REST and a websocket.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"nexus/internal/dashboard"
	"nexus/internal/domain"
	"nexus/internal/usecase"
)

// ChatService is the conversation surface the transports need.
// *usecase.ConversationStore satisfies it.
type ChatService interface {
	Submit(text string) (usecase.Receipt, error)
	Snapshot() domain.Snapshot
	Subscribe() (<-chan domain.Snapshot, func())
}

type DashboardSource interface {
	View() dashboard.View
}

type Deps struct {
	Chat        ChatService
	Dashboard   DashboardSource
	Logger      *zap.Logger
	CORSOrigins []string
}

type SubmitRequest struct {
	Text string `json:"text"`
}

type SubmitResponse struct {
	Accepted bool            `json:"accepted"`
	Message  *domain.Message `json:"message,omitempty"`
	Snapshot domain.Snapshot `json:"snapshot"`
}

type api struct {
	chat      ChatService
	dashboard DashboardSource
	logger    *zap.Logger
	origins   []string
}

func NewRouter(deps Deps) (*chi.Mux, error) {
	if deps.Chat == nil {
		return nil, errors.New("httpapi: chat service must not be nil")
	}
	if deps.Dashboard == nil {
		return nil, errors.New("httpapi: dashboard source must not be nil")
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	origins := deps.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	a := &api{chat: deps.Chat, dashboard: deps.Dashboard, logger: logger, origins: origins}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Correlation-Id", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/dashboard", a.handleDashboard)
		r.Route("/chat", func(r chi.Router) {
			r.Get("/", a.handleSnapshot)
			r.Post("/messages", a.handleSubmit)
			r.Get("/ws", a.handleWebSocket)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: ErrorNotFound})
	})

	return r, nil
}

func (a *api) handleDashboard(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, a.dashboard.View())
}

func (a *api) handleSnapshot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, a.chat.Snapshot())
}

// handleSubmit answers 202 once the user entry is appended. With ?wait=true
// it holds the request until the reply is appended and answers 200.
func (a *api) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: ErrorInvalidInput})
		return
	}

	rc, err := a.chat.Submit(req.Text)
	if err != nil {
		status, code := ErrorStatus(err)
		if status >= http.StatusInternalServerError {
			a.logger.Error("submit failed", zap.Error(err), zap.String("request_id", middleware.GetReqID(r.Context())))
		}
		writeJSON(w, status, ErrorResponse{Error: code})
		return
	}
	if !rc.Accepted {
		writeJSON(w, http.StatusOK, SubmitResponse{Accepted: false, Snapshot: a.chat.Snapshot()})
		return
	}

	status := http.StatusAccepted
	if wait, _ := strconv.ParseBool(r.URL.Query().Get("wait")); wait {
		select {
		case <-rc.Done:
			status = http.StatusOK
		case <-r.Context().Done():
			return
		}
	}

	msg := rc.Message
	writeJSON(w, status, SubmitResponse{Accepted: true, Message: &msg, Snapshot: a.chat.Snapshot()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// requestLogger logs one line per request through zap.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Info("http request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
					zap.String("remote_ip", r.RemoteAddr),
					zap.String("request_id", middleware.GetReqID(r.Context())),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

// Serve runs srv until ctx is cancelled, then shuts it down gracefully.
func Serve(ctx context.Context, srv *http.Server, logger *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
