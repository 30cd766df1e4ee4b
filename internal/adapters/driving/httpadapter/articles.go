package httpadapter

import (
	"log"
	"mockserver/internal/core/service/resource"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const authorParam = "author"

// ArticlesHandler serves the standalone articles deployment.
type ArticlesHandler struct {
	articleService *resource.ArticleService
}

func NewArticlesHandler(svc *resource.ArticleService) *ArticlesHandler {
	return &ArticlesHandler{
		articleService: svc,
	}
}

func (h *ArticlesHandler) SetupRoutes(mws ...func(http.Handler) http.Handler) http.Handler {
	router := chi.NewRouter()

	router.Use(mws...)
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.GetHead) // HEAD is answered by the GET route

	router.Get("/articles", h.HandleArticles)

	return router
}

func (h *ArticlesHandler) HandleArticles(w http.ResponseWriter, r *http.Request) {
	author := r.URL.Query().Get(authorParam)

	ds := h.articleService.Articles(r.Context(), author)

	if err := writeJSON(w, http.StatusOK, ds); err != nil {
		log.Printf("ERROR: Failed to encode articles response: %v", err)
	}
}
