package httpserver

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	appconv "github.com/bryanwahyu/podcast-assistant/internal/application/conversation"
	domai "github.com/bryanwahyu/podcast-assistant/internal/domain/ai"
	"github.com/bryanwahyu/podcast-assistant/internal/domain/conversation"
	"github.com/bryanwahyu/podcast-assistant/internal/middleware"
)

//go:embed web
var webFS embed.FS

// defaultMaxAudioChars bounds the audio field; 25 MiB of audio is ~35 MiB as base64.
const defaultMaxAudioChars = 36 << 20

var errPayloadTooLarge = errors.New("payload too large")

// Processor turns decoded audio into a report.
type Processor interface {
	Process(ctx context.Context, audio []byte) (*conversation.Report, error)
}

type Options struct {
	AllowedOrigins []string
	// MaxAudioChars caps the audio field; the body may exceed it by 1 KiB.
	MaxAudioChars  int
	RateLimiter    *middleware.RateLimiter
	HealthCheckers map[string]middleware.HealthChecker
	Logger         *zap.Logger
}

type Router struct {
	svc      Processor
	maxAudio int
	maxBody  int64
	logger   *zap.Logger
}

func NewRouter(svc Processor, opts Options) http.Handler {
	if opts.MaxAudioChars <= 0 {
		opts.MaxAudioChars = defaultMaxAudioChars
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	r := &Router{svc: svc, maxAudio: opts.MaxAudioChars, maxBody: int64(opts.MaxAudioChars) + 1<<10, logger: opts.Logger}

	mux := chi.NewRouter()
	mux.Use(chimw.RequestID)
	mux.Use(chimw.RealIP)
	mux.Use(middleware.RequestLogger(opts.Logger))
	mux.Use(r.recoverer)
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	static, err := fs.Sub(webFS, "web")
	if err != nil {
		panic(fmt.Sprintf("embedded web assets: %v", err))
	}
	mux.Get("/", func(w http.ResponseWriter, req *http.Request) {
		http.ServeFileFS(w, req, static, "index.html")
	})
	mux.Handle("/static/*", http.FileServer(http.FS(static)))

	mux.Get("/health", middleware.HealthHandler(opts.HealthCheckers))
	mux.Get("/healthz/ready", middleware.ReadinessHandler)
	mux.Get("/healthz/live", middleware.LivenessHandler)
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Group(func(rt chi.Router) {
		if opts.RateLimiter != nil {
			rt.Use(middleware.RateLimit(opts.RateLimiter))
		}
		rt.Post("/process_audio", r.wrap(r.handleProcessAudio))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}
		switch {
		case errors.Is(err, conversation.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, errPayloadTooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, err.Error())
		case errors.Is(err, domai.ErrQuotaExceeded):
			writeError(w, http.StatusTooManyRequests, "ai quota exceeded")
		default:
			r.logger.Error("request failed",
				zap.String("request_id", chimw.GetReqID(req.Context())),
				zap.Error(err),
			)
			writeError(w, http.StatusInternalServerError, err.Error())
		}
	}
}

// recoverer answers a panic with a 500 JSON body instead of a partial report.
func (r *Router) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			r.logger.Error("panic recovered",
				zap.String("request_id", chimw.GetReqID(req.Context())),
				zap.Any("panic", rec),
				zap.Stack("stack"),
			)
			writeError(w, http.StatusInternalServerError, "internal server error")
		}()
		next.ServeHTTP(w, req)
	})
}

type processAudioRequest struct {
	Audio string `json:"audio" validate:"required"`
}

// POST /process_audio
// Body: {"audio": "<base64 or raw payload>"}
func (r *Router) handleProcessAudio(w http.ResponseWriter, req *http.Request) error {
	var body processAudioRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, req.Body, r.maxBody))
	if err := dec.Decode(&body); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty request body", conversation.ErrInvalidInput)
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("%w: request body exceeds %d bytes", errPayloadTooLarge, tooLarge.Limit)
		}
		return fmt.Errorf("%w: invalid JSON body: %v", conversation.ErrInvalidInput, err)
	}
	if err := middleware.ValidateStruct(body); err != nil {
		return fmt.Errorf("%w: %v", conversation.ErrInvalidInput, err)
	}
	if len(body.Audio) > r.maxAudio {
		return fmt.Errorf("%w: audio exceeds %d characters", errPayloadTooLarge, r.maxAudio)
	}

	report, err := r.svc.Process(req.Context(), appconv.DecodeAudio(body.Audio))
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, report)
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
