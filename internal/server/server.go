package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/example/go-hindi-bpe/internal/config"
	"github.com/example/go-hindi-bpe/internal/tokenizer"
)

var (
	// ErrNoIDs is returned by ParseIDs when the input holds no IDs.
	ErrNoIDs = errors.New("no token ids")
	// ErrInvalidID is returned by ParseIDs for a non-integer entry.
	ErrInvalidID = errors.New("invalid token id")
)

// ParseLogLevel converts a case-insensitive level string to slog.Level.
// An empty string returns slog.LevelInfo. Unknown strings return an error.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q (want debug|info|warn|error)", s)
	}
}

// ParseIDs parses a comma-separated ID list such as "[1, 2, 3]". Brackets
// are ignored and empty entries skipped.
func ParseIDs(s string) ([]int, error) {
	cleaned := strings.TrimSpace(strings.NewReplacer("[", "", "]", "").Replace(s))
	var ids []int
	for _, part := range strings.Split(cleaned, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("%w %q", ErrInvalidID, part)
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, ErrNoIDs
	}
	return ids, nil
}

// Codec is the tokenizer surface served over HTTP.
type Codec interface {
	Encode(text string) []int
	EncodeTokens(text string) []string
	Decode(ids []int) string
	Info() tokenizer.Info
}

// ---------------------------------------------------------------------------
// Functional options
// ---------------------------------------------------------------------------

type options struct {
	maxTextBytes int
	workers      int
	logger       *slog.Logger
}

// bodyOverheadBytes is the room allowed beyond the escaped text for the JSON
// envelope of a request.
const bodyOverheadBytes = 4096

// maxBodyBytes bounds a request body. JSON escapes expand a byte to at most
// six (\u00XX), so a body within the limit can always carry a text of
// maxTextBytes.
func (o options) maxBodyBytes() int64 {
	return 6*int64(o.maxTextBytes) + bodyOverheadBytes
}

func defaultOptions() options {
	return options{
		maxTextBytes: 65536,
		workers:      8,
		logger:       slog.Default(),
	}
}

// Option configures the HTTP handler.
type Option func(*options)

// WithMaxTextBytes sets the maximum text length in bytes for POST /encode
// and the ID input length for POST /decode.
func WithMaxTextBytes(n int) Option {
	return func(o *options) { o.maxTextBytes = n }
}

// WithWorkers sets the maximum number of concurrent encode/decode calls.
// Zero disables the limit.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithLogger sets the slog.Logger used for request logging.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// ---------------------------------------------------------------------------
// handler
// ---------------------------------------------------------------------------

type handler struct {
	codec Codec
	opts  options
	sem   chan struct{} // semaphore for worker pool
	log   *slog.Logger
}

// NewHandler returns an http.Handler that serves /health, /info, POST /encode
// and POST /decode.
func NewHandler(codec Codec, optFns ...Option) http.Handler {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	h := &handler{
		codec: codec,
		opts:  opts,
		log:   opts.logger,
	}
	if opts.workers > 0 {
		h.sem = make(chan struct{}, opts.workers)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.handleHealth)
	mux.HandleFunc("/info", h.handleInfo)
	mux.HandleFunc("/encode", h.handleEncode)
	mux.HandleFunc("/decode", h.handleDecode)
	return mux
}

func buildVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func (h *handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildVersion(),
	})
}

func (h *handler) handleInfo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.codec.Info())
}

type encodeRequest struct {
	Text string `json:"text"`
}

type encodeResponse struct {
	IDs    []int    `json:"ids"`
	Tokens []string `json:"tokens"`
}

func (h *handler) handleEncode(w http.ResponseWriter, r *http.Request) {
	var req encodeRequest
	if !h.readRequest(w, r, &req) {
		return
	}
	if len(req.Text) > h.opts.maxTextBytes {
		writeError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("text exceeds maximum size of %d bytes", h.opts.maxTextBytes))
		return
	}
	if !h.acquire(w, r) {
		return
	}
	defer h.release()

	start := time.Now()
	resp := encodeResponse{
		IDs:    h.codec.Encode(req.Text),
		Tokens: h.codec.EncodeTokens(req.Text),
	}
	if resp.IDs == nil {
		resp.IDs = []int{}
	}
	if resp.Tokens == nil {
		resp.Tokens = []string{}
	}

	h.log.InfoContext(r.Context(), "encode complete",
		slog.Int("text_len", len(req.Text)),
		slog.Int("tokens", len(resp.IDs)),
		slog.Int64("duration_us", time.Since(start).Microseconds()),
	)
	writeJSON(w, http.StatusOK, resp)
}

type decodeRequest struct {
	IDs   []int  `json:"ids"`
	Input string `json:"input"`
}

type decodeResponse struct {
	Text string `json:"text"`
}

func (h *handler) handleDecode(w http.ResponseWriter, r *http.Request) {
	var req decodeRequest
	if !h.readRequest(w, r, &req) {
		return
	}

	ids := req.IDs
	if ids == nil {
		if len(req.Input) > h.opts.maxTextBytes {
			writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("input exceeds maximum size of %d bytes", h.opts.maxTextBytes))
			return
		}
		parsed, err := ParseIDs(req.Input)
		if err != nil {
			h.log.WarnContext(r.Context(), "decode rejected",
				slog.Int("input_len", len(req.Input)),
				slog.String("error", err.Error()),
			)
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		ids = parsed
	}
	if !h.acquire(w, r) {
		return
	}
	defer h.release()

	start := time.Now()
	text := h.codec.Decode(ids)
	h.log.InfoContext(r.Context(), "decode complete",
		slog.Int("ids", len(ids)),
		slog.Int("text_len", len(text)),
		slog.Int64("duration_us", time.Since(start).Microseconds()),
	)
	writeJSON(w, http.StatusOK, decodeResponse{Text: text})
}

// readRequest enforces POST with a JSON body and decodes it into v. It
// writes the error response itself and reports whether to continue.
func (h *handler) readRequest(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return false
	}
	if r.Body == nil || r.Body == http.NoBody {
		writeError(w, http.StatusBadRequest, "request body is required")
		return false
	}
	body := http.MaxBytesReader(w, r.Body, h.opts.maxBodyBytes())
	if err := json.NewDecoder(body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request body exceeds maximum size of %d bytes", maxErr.Limit))
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return false
	}
	return true
}

// acquire takes a worker slot, honouring request cancellation while waiting.
func (h *handler) acquire(w http.ResponseWriter, r *http.Request) bool {
	if h.sem == nil {
		return true
	}
	select {
	case h.sem <- struct{}{}:
		return true
	case <-r.Context().Done():
		writeError(w, http.StatusServiceUnavailable, "request cancelled while waiting for worker")
		return false
	}
}

func (h *handler) release() {
	if h.sem != nil {
		<-h.sem
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// ---------------------------------------------------------------------------
// Server
// ---------------------------------------------------------------------------

// Server wires the HTTP handler into a net/http.Server with graceful shutdown.
type Server struct {
	cfg             config.Config
	codec           Codec
	logger          *slog.Logger
	shutdownTimeout time.Duration
}

// New returns a server for cfg. A nil codec is loaded from
// cfg.Paths.VocabPath when Start runs.
func New(cfg config.Config, codec Codec) *Server {
	timeout := 30 * time.Second
	if cfg.Server.ShutdownTimeout > 0 {
		timeout = time.Duration(cfg.Server.ShutdownTimeout) * time.Second
	}
	return &Server{
		cfg:             cfg,
		codec:           codec,
		logger:          slog.Default(),
		shutdownTimeout: timeout,
	}
}

// WithShutdownTimeout overrides the graceful-shutdown drain period.
func (s *Server) WithShutdownTimeout(d time.Duration) *Server {
	s.shutdownTimeout = d
	return s
}

// WithLogger overrides the request logger.
func (s *Server) WithLogger(l *slog.Logger) *Server {
	s.logger = l
	return s
}

func (s *Server) Start(ctx context.Context) error {
	codec := s.codec
	if codec == nil {
		tok, err := tokenizer.Open(s.cfg.Paths.VocabPath, s.logger)
		if err != nil {
			return fmt.Errorf("load vocabulary: %w", err)
		}
		codec = tok
	}

	h := NewHandler(codec,
		WithWorkers(s.cfg.Server.Workers),
		WithMaxTextBytes(s.cfg.Server.MaxTextBytes),
		WithLogger(s.logger),
	)

	httpServer := &http.Server{
		Addr:              s.cfg.Server.ListenAddr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()
	s.logger.Info("server listening",
		slog.String("addr", s.cfg.Server.ListenAddr),
		slog.Int("workers", s.cfg.Server.Workers),
	)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http listen: %w", err)
	}
}

func ProbeHTTP(addr string) error {
	resp, err := http.Get("http://" + addr + "/health") //nolint:noctx
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected health status: %s", resp.Status)
	}
	return nil
}
