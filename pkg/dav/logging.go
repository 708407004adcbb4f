package dav

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

var _ http.ResponseWriter = &loggingWriter{}

type loggingWriter struct {
	writer http.ResponseWriter

	writeErr   error
	n          int
	statusCode int
}

func (w *loggingWriter) Header() http.Header {
	return w.writer.Header()
}

func (w *loggingWriter) Write(bytes []byte) (int, error) {
	n, err := w.writer.Write(bytes)
	w.n += n
	if err != nil {
		w.writeErr = err
	}
	return n, err
}

func (w *loggingWriter) WriteHeader(statusCode int) {
	w.writer.WriteHeader(statusCode)
	w.statusCode = statusCode
}

var _ http.Handler = &loggingHandler{}

type loggingHandler struct {
	logger *slog.Logger
	next   http.Handler
}

// NewLoggingHandler wraps next with per-request access logging.
func NewLoggingHandler(next http.Handler, logger *slog.Logger) http.Handler {
	if logger == nil {
		return next
	}
	return &loggingHandler{
		logger: logger,
		next:   next,
	}
}

func (h *loggingHandler) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	start := time.Now()
	requestID := uuid.Must(uuid.NewV7()).String()
	w := &loggingWriter{
		writer: writer,
	}
	h.next.ServeHTTP(w, request)
	h.logger.DebugContext(request.Context(), "WebDAV request done",
		"request_id", requestID,
		"method", request.Method,
		"url", request.URL.String(),
		"depth", request.Header.Get("Depth"),
		"response_bytes", w.n,
		"response_status_code", w.statusCode,
		"response_error", w.writeErr,
		"took_us", time.Since(start).Microseconds())
}
