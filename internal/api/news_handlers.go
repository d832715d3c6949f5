package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/medimind/medimind-server/internal/news"
	"github.com/medimind/medimind-server/pkg/logging"
)

type NewsService interface {
	Headlines(ctx context.Context, country string, pageSize int) ([]news.Article, error)
}

type NewsResponse struct {
	Status       string         `json:"status"`
	TotalResults int            `json:"totalResults"`
	Articles     []news.Article `json:"articles"`
}

func newsHandler(svc NewsService, logger *logging.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		pageSize := 0
		if raw := q.Get("page_size"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "page_size must be an integer")
				return
			}
			pageSize = n
		}

		articles, err := svc.Headlines(r.Context(), q.Get("country"), pageSize)
		if err != nil {
			if errors.Is(err, news.ErrNotConfigured) {
				writeError(w, http.StatusInternalServerError, "news feed is not configured")
				return
			}
			logger.Error("news request failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		writeJSON(w, http.StatusOK, NewsResponse{
			Status:       "ok",
			TotalResults: len(articles),
			Articles:     articles,
		})
	}
}
