package api

import (
	"net/http"

	"github.com/rs/zerolog/hlog"
	"gopkg.in/yaml.v3"

	"ainews-watch/aggregator/internal/categorize"
	"ainews-watch/aggregator/internal/config"
)

// Categories handles GET /api/news/categories. Every category is listed in
// declaration order, including those without articles.
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	counts, err := h.repo.CategoryCounts(r.Context())
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("Error counting categories")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	categories := make([]CategoryCount, len(categorize.Categories))
	for i, name := range categorize.Categories {
		categories[i] = CategoryCount{Name: name, Count: counts[name]}
	}

	writeJSON(w, r, http.StatusOK, map[string]any{"categories": categories})
}

// Sources handles GET /api/news/sources.
func (h *Handler) Sources(w http.ResponseWriter, r *http.Request) {
	rows, err := h.repo.ListSources(r.Context())
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("Error listing sources")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	sources := make([]SourceView, len(rows))
	for i, row := range rows {
		sources[i] = newSourceView(row)
	}

	writeJSON(w, r, http.StatusOK, map[string]any{"count": len(sources), "sources": sources})
}

// ExportSources handles GET /api/news/sources/export. The body is a sources
// file that `aggregator import` accepts.
func (h *Handler) ExportSources(w http.ResponseWriter, r *http.Request) {
	log := hlog.FromRequest(r)

	rows, err := h.repo.ListSources(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Error listing sources")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	file := config.SourcesFile{Sources: make([]config.SourceEntry, len(rows))}
	for i, row := range rows {
		active := row.IsActive
		file.Sources[i] = config.SourceEntry{
			Name:         row.Name,
			FeedURL:      row.FeedURL,
			CategoryHint: row.CategoryHint,
			Active:       &active,
		}
	}

	body, err := yaml.Marshal(file)
	if err != nil {
		log.Error().Err(err).Msg("Error generating sources YAML")
		http.Error(w, "Error generating YAML", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/yaml")
	w.Header().Set("Content-Disposition", "attachment; filename=sources.yaml")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("Error writing sources YAML")
		return
	}
	log.Info().Int("source_count", len(rows)).Msg("Exported sources as YAML")
}

// Stats handles GET /api/news/stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.repo.Stats(r.Context())
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("Error computing stats")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, r, http.StatusOK, StatsResponse{
		TotalArticles: stats.TotalArticles,
		LatestUpdate:  stats.LatestUpdate,
		Categories:    stats.Categories,
		Sources:       stats.Sources,
	})
}
