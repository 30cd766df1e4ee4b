package httpadapter

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"mockserver/internal/core/domain"
	"mockserver/internal/core/query"
	"mockserver/internal/core/service/resource"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

const (
	MaxRequestSize = 1024 * 1024 // 1MB max request size

	TotalCountHeader = "X-Total-Count"
)

var prettyJSON = json.JoinOptions(jsontext.Multiline(true), jsontext.WithIndent("  "))

type Handler struct {
	resourceService resource.Service
}

func NewHandler(svc resource.Service) *Handler {
	return &Handler{
		resourceService: svc,
	}
}

func (h *Handler) handleError(w http.ResponseWriter, err error) {
	var persistErr *resource.PersistenceError
	var tooLarge *http.MaxBytesError

	switch {
	// Not Found Errors
	case errors.Is(err, resource.ErrResourceNotFound):
		http.Error(w, "Resource not found", http.StatusNotFound)

	case errors.Is(err, resource.ErrRecordNotFound):
		http.Error(w, "Item not found", http.StatusNotFound)

	// Bad Request Errors
	case errors.Is(err, resource.ErrEmptyResourceName), errors.Is(err, resource.ErrEmptyRecordID), errors.Is(err, resource.ErrInvalidRecord):
		http.Error(w, err.Error(), http.StatusBadRequest)

	case errors.As(err, &tooLarge):
		http.Error(w, fmt.Sprintf("Request body exceeds %d bytes", tooLarge.Limit), http.StatusRequestEntityTooLarge)

	// the repository has already logged the divergence
	case errors.As(err, &persistErr):
		http.Error(w, "Failed to save data", http.StatusInternalServerError)

	// Default to Server Error
	default:
		log.Printf("ERROR: Unhandled error from service: %v", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	return json.MarshalWrite(w, body, prettyJSON)
}

// SetupRoutes builds the router. mws run before routing, outside the request
// logger, so CORS preflights and artificial latency apply to every route.
func (h *Handler) SetupRoutes(mws ...func(http.Handler) http.Handler) http.Handler {
	router := chi.NewRouter()

	router.Use(mws...)
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.GetHead) // HEAD is answered by the GET route

	router.Get("/", h.HandleListResources)

	router.With(RequireURLParams("postID")).Get("/posts/{postID}/comments", h.HandleListComments)

	router.Get("/{resourceName}", h.HandleListItems)
	router.Get("/{resourceName}/{itemID}", h.HandleGetItemByID)

	// write operations will have size limits
	router.Group(func(r chi.Router) {
		r.Use(RequestSizeLimit(MaxRequestSize)) // enforce MaxRequestSize limit
		r.Post("/{resourceName}", h.HandleCreateItem)
	})

	return router
}

func (h *Handler) HandleListResources(w http.ResponseWriter, r *http.Request) {
	names := h.resourceService.ListResources(r.Context())

	if err := writeJSON(w, http.StatusOK, names); err != nil {
		log.Printf("ERROR: Failed to encode resource list: %v", err)
	}
}

func (h *Handler) HandleListItems(w http.ResponseWriter, r *http.Request) {
	// cleanly extract the URL parameter
	resourceName := chi.URLParam(r, "resourceName")

	items, total, err := h.resourceService.ListItems(r.Context(), resourceName, query.ParseValues(r.URL.Query()))
	if err != nil {
		h.handleError(w, err)
		return
	}

	if items == nil {
		items = []domain.Item{}
	}

	w.Header().Set(TotalCountHeader, strconv.Itoa(total))
	if err := writeJSON(w, http.StatusOK, items); err != nil {
		log.Printf("ERROR: Failed to encode response for '%s': %v", resourceName, err)
	}
}

func (h *Handler) HandleGetItemByID(w http.ResponseWriter, r *http.Request) {
	resourceName := chi.URLParam(r, "resourceName")
	itemID := chi.URLParam(r, "itemID")

	item, err := h.resourceService.GetItemByID(r.Context(), resourceName, itemID)
	if err != nil {
		h.handleError(w, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, item); err != nil {
		log.Printf("ERROR: Failed to encode response for '%s' with ID '%s': %v", resourceName, itemID, err)
	}
}

func (h *Handler) HandleCreateItem(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	resourceName := chi.URLParam(r, "resourceName")

	item, err := decodeItem(r.Body)
	if err != nil {
		log.Printf("ERROR: Failed to decode request for '%s': %v", resourceName, err)
		h.handleError(w, err)
		return
	}

	created, err := h.resourceService.CreateItem(r.Context(), resourceName, item)
	if err != nil {
		h.handleError(w, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, created); err != nil {
		log.Printf("ERROR: Failed to encode response for '%s': %v", resourceName, err)
	}
}

func (h *Handler) HandleListComments(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "postID")

	comments, err := h.resourceService.ListComments(r.Context(), postID)
	if err != nil {
		h.handleError(w, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, comments); err != nil {
		log.Printf("ERROR: Failed to encode comments for post '%s': %v", postID, err)
	}
}

// decodeItem reads a JSON object from body. An empty body is an empty item.
func decodeItem(body io.Reader) (domain.Item, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return domain.Item{}, err
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return domain.NewItem(), nil
	}

	item, err := domain.ParseItem(data)
	if err != nil {
		return domain.Item{}, fmt.Errorf("%w: %v", resource.ErrInvalidRecord, err)
	}
	return item, nil
}
