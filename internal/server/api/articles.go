package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/hlog"

	"ainews-watch/aggregator/internal/server/pagination"
	"ainews-watch/aggregator/internal/server/storage"
)

const (
	defaultDays  = 7
	maxDays      = 365
	defaultLimit = 50
	maxLimit     = 500

	defaultExportLimit = 100
	maxExportLimit     = 1000
)

// Handler serves the read API.
type Handler struct {
	repo storage.Repository
	now  func() time.Time
}

// NewHandler creates a new handler instance. A nil now uses time.Now.
func NewHandler(repo storage.Repository, now func() time.Time) *Handler {
	if now == nil {
		now = time.Now
	}
	return &Handler{repo: repo, now: now}
}

// ListArticles handles GET /api/news/articles.
func (h *Handler) ListArticles(w http.ResponseWriter, r *http.Request) {
	log := hlog.FromRequest(r)
	query := r.URL.Query()

	days, err := intParam(query.Get("days"), defaultDays, 1, maxDays)
	if err != nil {
		log.Warn().Err(err).Str("days", query.Get("days")).Msg("Invalid 'days' parameter value")
		http.Error(w, fmt.Sprintf("Invalid 'days' parameter: %v", err), http.StatusBadRequest)
		return
	}

	limit, err := intParam(query.Get("limit"), defaultLimit, 1, maxLimit)
	if err != nil {
		log.Warn().Err(err).Str("limit", query.Get("limit")).Msg("Invalid 'limit' parameter value")
		http.Error(w, fmt.Sprintf("Invalid 'limit' parameter: %v", err), http.StatusBadRequest)
		return
	}

	filter := storage.ArticleFilter{
		Category: query.Get("category"),
		Source:   query.Get("source"),
		Since:    h.now().UTC().AddDate(0, 0, -days),
		Limit:    limit,
	}

	articles, err := h.repo.ListArticles(r.Context(), filter)
	if err != nil {
		log.Error().Err(err).Msg("Error fetching articles from repository")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, r, http.StatusOK, ListResponse{Count: len(articles), Articles: newArticleViews(articles)})
}

// Today handles GET /api/news/today: articles fetched since UTC midnight.
func (h *Handler) Today(w http.ResponseWriter, r *http.Request) {
	now := h.now().UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	articles, err := h.repo.ListArticles(r.Context(), storage.ArticleFilter{Since: midnight, Limit: maxLimit})
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("Error fetching today's articles")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, r, http.StatusOK, ListResponse{Count: len(articles), Articles: newArticleViews(articles)})
}

// GetArticle handles GET /api/news/articles/{id}.
func (h *Handler) GetArticle(w http.ResponseWriter, r *http.Request) {
	log := hlog.FromRequest(r)

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		log.Warn().Str("id", r.PathValue("id")).Msg("Invalid article id")
		http.Error(w, "Invalid article id", http.StatusBadRequest)
		return
	}

	article, err := h.repo.GetArticle(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		http.Error(w, "Article not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Error().Err(err).Int64("id", id).Msg("Error fetching article")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, r, http.StatusOK, newArticleView(*article, true))
}

// ExportArticles handles GET /v1/articles, the incremental export. It needs
// either 'since' (RFC3339) for the first page or the 'cursor' returned by
// the previous page.
func (h *Handler) ExportArticles(w http.ResponseWriter, r *http.Request) {
	log := hlog.FromRequest(r)
	query := r.URL.Query()
	cursorStr := query.Get("cursor")
	sinceStr := query.Get("since")

	limit, err := intParam(query.Get("limit"), defaultExportLimit, 1, maxExportLimit)
	if err != nil {
		log.Warn().Err(err).Str("limit", query.Get("limit")).Msg("Invalid 'limit' parameter value")
		http.Error(w, fmt.Sprintf("Invalid 'limit' parameter: %v", err), http.StatusBadRequest)
		return
	}

	var since *time.Time
	var cursorTimestamp *time.Time
	var cursorID *int64

	switch {
	case cursorStr != "":
		c, err := pagination.Decode(cursorStr)
		if err != nil {
			log.Warn().Err(err).Str("cursor", cursorStr).Msg("Invalid 'cursor' parameter")
			http.Error(w, "Invalid 'cursor' parameter", http.StatusBadRequest)
			return
		}
		cursorTimestamp = &c.FetchedAt
		cursorID = &c.ID
	case sinceStr != "":
		parsed, err := time.Parse(time.RFC3339, sinceStr)
		if err != nil {
			log.Warn().Err(err).Str("since", sinceStr).Msg("Invalid 'since' parameter format")
			http.Error(w, "Invalid 'since' parameter: use RFC3339 format (e.g., 2025-03-28T15:00:00Z)", http.StatusBadRequest)
			return
		}
		utcSince := parsed.UTC()
		since = &utcSince
	default:
		log.Warn().Msg("Missing required parameter: 'since' or 'cursor'")
		http.Error(w, "Missing required parameter: 'since' or 'cursor'", http.StatusBadRequest)
		return
	}

	// One extra row tells whether another page exists.
	articles, err := h.repo.FetchArticles(r.Context(), limit+1, since, cursorTimestamp, cursorID)
	if err != nil {
		log.Error().Err(err).Str("cursor", cursorStr).Msg("Error fetching articles from repository")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	resp := ExportResponse{}
	if len(articles) > limit {
		articles = articles[:limit]
		last := articles[len(articles)-1]
		next := pagination.Cursor{FetchedAt: last.FetchedAt, ID: last.ID}.Encode()
		resp.NextCursor = &next
	}
	resp.Items = newArticleViews(articles)

	writeJSON(w, r, http.StatusOK, resp)
}

// intParam parses an optional integer query parameter within [lo, hi].
func intParam(raw string, def, lo, hi int) (int, error) {
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < lo || v > hi {
		return 0, fmt.Errorf("must be an integer between %d and %d", lo, hi)
	}
	return v, nil
}
