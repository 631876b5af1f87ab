package book

import (
	"errors"
	"log/slog"
	"net/http"

	"librarian/internal/httpx"
	"librarian/internal/logging"
)

const (
	msgFetchFailed  = "Error fetching books"
	msgCreateFailed = "Error creating book"
	msgUpdateFailed = "Error updating book"
	msgDeleteFailed = "Error deleting book"
	msgNotFound     = "Book not found"
	msgDeleted      = "Book deleted successfully"
	msgInvalidBody  = "Invalid request body"
	msgBodyTooLarge = "Request body too large"
)

type HTTPHandler struct {
	service *Service
	logger  *slog.Logger
	strict  bool
}

// HandlerOption configures an HTTPHandler.
type HandlerOption func(*HTTPHandler)

// WithLogger sets the logger used for failed operations.
func WithLogger(logger *slog.Logger) HandlerOption {
	return func(h *HTTPHandler) {
		h.logger = logger
	}
}

// WithStrictValidation makes malformed bodies answer 400 with field details
// instead of the operation's generic 500.
func WithStrictValidation(strict bool) HandlerOption {
	return func(h *HTTPHandler) {
		h.strict = strict
	}
}

func NewHTTPHandler(service *Service, opts ...HandlerOption) *HTTPHandler {
	h := &HTTPHandler{service: service, logger: logging.Nop()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the collection routes on mux.
func (h *HTTPHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/books", h.List)
	mux.HandleFunc("POST /api/books", h.Create)
	mux.HandleFunc("PUT /api/books", h.Update)
	mux.HandleFunc("DELETE /api/books", h.Delete)
}

// List handles GET /api/books
// @Summary List books
// @Description Returns every book in catalog order, optionally filtered by q (title or author, case-insensitive)
// @Tags books
// @Produce json
// @Param q query string false "Search title or author"
// @Success 200 {array} Book
// @Failure 500 {object} httpx.MessageResponse
// @Router /api/books [get]
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	books, err := h.service.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.fail(w, r, "list", msgFetchFailed, err)
		return
	}
	if books == nil {
		books = []Book{}
	}
	httpx.JSON(w, http.StatusOK, books)
}

// Create handles POST /api/books
// @Summary Create book
// @Tags books
// @Accept json
// @Produce json
// @Success 201 {object} Book
// @Failure 500 {object} httpx.MessageResponse
// @Router /api/books [post]
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, err := DecodeCreate(r.Body)
	if err != nil {
		h.fail(w, r, "create", msgCreateFailed, err)
		return
	}
	created, err := h.service.Create(r.Context(), in)
	if err != nil {
		h.fail(w, r, "create", msgCreateFailed, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

// Update handles PUT /api/books
// @Summary Update book
// @Description Overlays the supplied fields onto the book with the given id
// @Tags books
// @Accept json
// @Produce json
// @Success 200 {object} Book
// @Failure 404 {object} httpx.MessageResponse
// @Failure 500 {object} httpx.MessageResponse
// @Router /api/books [put]
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	in, err := DecodeUpdate(r.Body)
	if err != nil {
		h.fail(w, r, "update", msgUpdateFailed, err)
		return
	}
	updated, err := h.service.Update(r.Context(), in)
	if err != nil {
		h.fail(w, r, "update", msgUpdateFailed, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/books
// @Summary Delete book
// @Tags books
// @Accept json
// @Produce json
// @Success 200 {object} httpx.MessageResponse
// @Failure 404 {object} httpx.MessageResponse
// @Failure 500 {object} httpx.MessageResponse
// @Router /api/books [delete]
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := DecodeDelete(r.Body)
	if err != nil {
		h.fail(w, r, "delete", msgDeleteFailed, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.fail(w, r, "delete", msgDeleteFailed, err)
		return
	}
	httpx.JSONMessage(w, http.StatusOK, msgDeleted)
}

// fail maps an operation error to its reply. Error text never reaches the
// response body.
func (h *HTTPHandler) fail(w http.ResponseWriter, r *http.Request, op, generic string, err error) {
	requestID := httpx.RequestIDFrom(r)

	var tooLarge *http.MaxBytesError
	var invalid *ValidationError
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.JSONMessage(w, http.StatusNotFound, msgNotFound)
	case errors.As(err, &tooLarge):
		h.logger.Warn("request body too large", "op", op, "limit", tooLarge.Limit, "request_id", requestID)
		httpx.JSONMessage(w, http.StatusRequestEntityTooLarge, msgBodyTooLarge)
	case errors.As(err, &invalid):
		h.logger.Warn("invalid request body", "op", op, "err", err, "request_id", requestID)
		if !h.strict {
			httpx.JSONMessage(w, http.StatusInternalServerError, generic)
			return
		}
		details := make([]httpx.ErrorDetail, 0, len(invalid.Fields))
		for _, f := range invalid.Fields {
			details = append(details, httpx.ErrorDetail{Field: f.Field, Message: f.Message})
		}
		if len(details) == 0 {
			details = append(details, httpx.ErrorDetail{Message: invalid.Reason})
		}
		httpx.JSONError(w, http.StatusBadRequest, msgInvalidBody, details)
	default:
		h.logger.Error("book operation failed", "op", op, "err", err, "request_id", requestID)
		httpx.JSONMessage(w, http.StatusInternalServerError, generic)
	}
}
