package handlers

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"taskManager/internal/logger"
	"taskManager/internal/models/task"
	"taskManager/internal/pipeline"

	"go.uber.org/zap"
)

const maxBodyBytes = 10 << 20

func checkContentType(r *http.Request, target string) bool {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return false
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	return mediaType == target
}

// decodeJSON проверяет Content-Type и читает тело; при ошибке ответ уже отправлен
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if !checkContentType(r, "application/json") {
		logger.Warn("HTTP: Неверный тип контента",
			zap.String("expected", "application/json"),
			zap.String("received", r.Header.Get("Content-Type")),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusUnsupportedMediaType, "Content-Type должен быть application/json")
		return false
	}

	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	defer r.Body.Close()

	if err := decoder.Decode(dst); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "неверное тело запроса: "+err.Error())
		return false
	}
	return true
}

func queryInt(values url.Values, key string) (int, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("неверное значение %s: %q", key, raw)
	}
	return n, nil
}

func queryBool(values url.Values, key string) bool {
	b, err := strconv.ParseBool(values.Get(key))
	return err == nil && b
}

func parseListQuery(values url.Values) (pipeline.Query, error) {
	q := pipeline.Query{
		Search: values.Get("q"),
		Tab:    pipeline.Tab(strings.ToLower(strings.TrimSpace(values.Get("tab")))),
	}

	switch bucket := pipeline.TimeBucket(values.Get("time")); bucket {
	case pipeline.TimeAny, pipeline.TimeOverdue, pipeline.TimeToday, pipeline.TimeThisWeek:
		q.Time = bucket
	default:
		return q, fmt.Errorf("неверное значение time: %q", bucket)
	}

	if raw := values.Get("priority"); raw != "" {
		p, ok := task.ParsePriority(raw)
		if !ok {
			return q, fmt.Errorf("неверное значение priority: %q", raw)
		}
		q.Priority = p
	}

	switch key := pipeline.SortKey(values.Get("sort")); key {
	case "", pipeline.SortOrder, pipeline.SortPriority, pipeline.SortDueDate, pipeline.SortTitle:
		q.Sort = key
	default:
		return q, fmt.Errorf("неверное значение sort: %q", key)
	}

	var err error
	if q.Page, err = queryInt(values, "page"); err != nil {
		return q, err
	}
	if q.PageSize, err = queryInt(values, "page_size"); err != nil {
		return q, err
	}
	return q, nil
}
