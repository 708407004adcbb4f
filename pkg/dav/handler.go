package dav

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-http-utils/headers"

	"github.com/bucketdav/bucketdav/pkg/store"
)

const lockResponseFormat = `<?xml version="1.0" encoding="utf-8"?>
<D:prop xmlns:D="DAV:">
  <D:lockdiscovery>
    <D:activelock>
      <D:locktype><D:write/></D:locktype>
      <D:lockscope><D:exclusive/></D:lockscope>
      <D:depth>%s</D:depth>
      <D:owner/>
      <D:timeout>%s</D:timeout>
    </D:activelock>
  </D:lockdiscovery>
</D:prop>`

// Handler translates WebDAV requests into flat object store calls. It
// holds no per-request state: locking is advisory-only and directories
// are views over key prefixes, so nothing is shared between requests.
type Handler struct {
	store store.Store
	creds Credentials
}

func NewHandler(s store.Store, creds Credentials) *Handler {
	return &Handler{
		store: s,
		creds: creds,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w, r)
	if !h.creds.authorized(r) {
		w.Header().Set(headers.WWWAuthenticate, `Basic realm="webdav"`)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	// URL paths map to object keys with the surrounding slashes shaved
	// off; a trailing slash in the raw path still marks directory
	// intent for GET and PROPFIND
	key := strings.Trim(r.URL.Path, "/")

	var err error
	switch r.Method {
	case http.MethodGet:
		err = h.handleGet(w, r, key)
	case http.MethodHead:
		err = h.handleGet(headResponseWriter{w}, r, key)
	case http.MethodPut:
		err = h.handlePut(w, r, key)
	case http.MethodDelete:
		err = h.handleDelete(w, r, key)
	case http.MethodOptions:
		h.handleOptions(w)
	case "MKCOL":
		err = h.handleMkcol(w, r, key)
	case "PROPFIND":
		err = h.handlePropfind(w, r, key)
	case "LOCK":
		h.handleLock(w, r)
	case "UNLOCK":
		w.WriteHeader(http.StatusNoContent)
	case "PROPPATCH", "COPY", "MOVE":
		http.Error(w, "Not Implemented", http.StatusNotImplemented)
	default:
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	}
	if err != nil {
		slog.Error("webdav request failed", "method", r.Method, "key", key, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request, key string) error {
	if strings.HasSuffix(r.URL.Path, "/") {
		// directories have no content body
		w.Header().Set(headers.ContentType, "text/html")
		_, _ = io.WriteString(w, notFoundPage)
		return nil
	}
	if r.Header.Get(headers.Range) != "" {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return nil
	}

	info, body, err := h.store.Get(r.Context(), key)
	if errors.Is(err, store.ErrDoesNotExist) {
		http.Error(w, "Not Found", http.StatusNotFound)
		return nil
	} else if err != nil {
		return err
	}
	defer func() { _ = body.Close() }()

	writeObjectHeaders(w, info)
	if _, err := io.Copy(w, body); err != nil {
		// headers are out already, nothing left to do but log
		slog.Warn("streaming object body failed", "key", key, "error", err)
	}
	return nil
}

func (h *Handler) handlePut(w http.ResponseWriter, r *http.Request, key string) error {
	if key == "" {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return nil
	}
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	err = h.store.Put(r.Context(), key, bytes.NewReader(data), int64(len(data)),
		r.Header.Get(headers.ContentType))
	if err != nil {
		return err
	}
	w.WriteHeader(http.StatusCreated)
	return nil
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request, key string) error {
	ctx := r.Context()
	_, err := h.store.Head(ctx, key)
	if errors.Is(err, store.ErrDoesNotExist) {
		// no direct object: treat key as a directory prefix
		objects, err := h.store.List(ctx, key)
		if err != nil {
			return err
		}
		if len(objects) == 0 {
			http.Error(w, "Not Found", http.StatusNotFound)
			return nil
		}
		for _, obj := range objects {
			if err := h.store.Delete(ctx, obj.Key); err != nil {
				return err
			}
		}
	} else if err != nil {
		return err
	}
	if err := h.store.Delete(ctx, key); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (h *Handler) handleMkcol(w http.ResponseWriter, r *http.Request, key string) error {
	if key == "" {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return nil
	}
	// the trailing-slash placeholder is what marks the directory as
	// explicitly created in an otherwise flat namespace
	marker := key + "/"
	_, err := h.store.Head(r.Context(), marker)
	if err == nil {
		http.Error(w, "Conflict", http.StatusConflict)
		return nil
	} else if !errors.Is(err, store.ErrDoesNotExist) {
		return err
	}
	if err := h.store.Put(r.Context(), marker, strings.NewReader(""), 0, ""); err != nil {
		return err
	}
	w.WriteHeader(http.StatusCreated)
	return nil
}

func (h *Handler) handleOptions(w http.ResponseWriter) {
	w.Header().Set("DAV", "1, 2")
	w.Header().Set(headers.Allow, strings.Join(Methods, ", "))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handlePropfind(w http.ResponseWriter, r *http.Request, key string) error {
	ctx := r.Context()

	// a path without a trailing slash is tried as a plain object first;
	// a miss is a miss, it never falls back to a directory listing
	if !strings.HasSuffix(r.URL.Path, "/") && key != "" {
		info, err := h.store.Head(ctx, key)
		if errors.Is(err, store.ErrDoesNotExist) {
			http.Error(w, "Not Found", http.StatusNotFound)
			return nil
		} else if err != nil {
			return err
		}
		return writeMultistatus(w, []resourceResponse{
			newResourceResponse("/"+info.Key, info),
		})
	}

	self := newResourceResponse("/"+key, nil)

	depth := r.Header.Get("Depth")
	if depth == "" {
		depth = "1"
	}
	switch depth {
	case "0":
		return writeMultistatus(w, []resourceResponse{self})
	case "1":
		objects, err := h.store.List(ctx, key)
		if err != nil {
			return err
		}
		if len(objects) == 0 {
			// nothing under the prefix means the directory does not exist
			http.Error(w, "Not Found", http.StatusNotFound)
			return nil
		}
		responses := []resourceResponse{self}
		for _, child := range directChildren(key, objects) {
			responses = append(responses, newResourceResponse("/"+child.key, child.info))
		}
		return writeMultistatus(w, responses)
	case "infinity":
		http.Error(w, "Not Implemented", http.StatusNotImplemented)
	default:
		http.Error(w, "Forbidden", http.StatusForbidden)
	}
	return nil
}

// handleLock acknowledges the lock without recording anything. Clients
// like Finder refuse to write without a LOCK round trip, so we echo an
// activelock back; no token is issued and nothing is enforced.
func (h *Handler) handleLock(w http.ResponseWriter, r *http.Request) {
	depth := r.Header.Get("Depth")
	if depth == "" {
		depth = "0"
	}
	timeout := r.Header.Get("Timeout")
	if timeout == "" {
		timeout = "Infinite"
	}
	w.Header().Set(headers.ContentType, "text/xml")
	_, _ = fmt.Fprintf(w, lockResponseFormat, depth, timeout)
}

func writeObjectHeaders(w http.ResponseWriter, info *store.ObjectInfo) {
	h := w.Header()
	contentType := info.ContentType
	if contentType == "" {
		contentType = defaultContentType
	}
	h.Set(headers.ContentType, contentType)
	h.Set(headers.ContentLength, strconv.FormatInt(info.Size, 10))
	if info.ETag != "" {
		h.Set(headers.ETag, info.ETag)
	}
	if !info.Uploaded.IsZero() {
		h.Set(headers.LastModified, info.Uploaded.UTC().Format(http.TimeFormat))
	}
	if info.ContentDisposition != "" {
		h.Set(headers.ContentDisposition, info.ContentDisposition)
	}
	if info.ContentEncoding != "" {
		h.Set(headers.ContentEncoding, info.ContentEncoding)
	}
	if info.ContentLanguage != "" {
		h.Set(headers.ContentLanguage, info.ContentLanguage)
	}
	if info.CacheControl != "" {
		h.Set(headers.CacheControl, info.CacheControl)
	}
	if info.CacheExpires != "" {
		h.Set("Cache-Expires", info.CacheExpires)
	}
}

var _ http.ResponseWriter = headResponseWriter{}

// headResponseWriter lets HEAD share the GET path: status and headers
// go through, the body is discarded.
type headResponseWriter struct {
	http.ResponseWriter
}

func (w headResponseWriter) Write(p []byte) (int, error) {
	return len(p), nil
}
