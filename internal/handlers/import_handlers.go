package handlers

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"time"

	"taskManager/internal/importer"
	"taskManager/internal/logger"
	"taskManager/internal/service"

	"go.uber.org/zap"
)

// formatByMediaType позволяет не указывать format, если клиент прислал Content-Type
var formatByMediaType = map[string]importer.Format{
	"application/json":   importer.FormatJSON,
	"application/yaml":   importer.FormatYAML,
	"application/x-yaml": importer.FormatYAML,
	"text/yaml":          importer.FormatYAML,
	"text/csv":           importer.FormatCSV,
}

// readImport разбирает параметры и тело импорта; при ошибке ответ уже отправлен
func readImport(w http.ResponseWriter, r *http.Request) ([]byte, service.ImportOptions, bool) {
	values := r.URL.Query()
	var opts service.ImportOptions

	format, err := importer.ParseFormat(values.Get("format"))
	if err != nil {
		responseWithError(w, http.StatusBadRequest, err.Error())
		return nil, opts, false
	}
	if format == importer.FormatAuto {
		if mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type")); err == nil {
			format = formatByMediaType[mediaType]
		}
	}
	opts.Format = format

	if opts.Match, err = importer.ParseMatch(values.Get("match")); err != nil {
		responseWithError(w, http.StatusBadRequest, err.Error())
		return nil, opts, false
	}
	if opts.Strategy, err = importer.ParseStrategy(values.Get("strategy")); err != nil {
		responseWithError(w, http.StatusBadRequest, err.Error())
		return nil, opts, false
	}
	opts.Confirm = queryBool(values, "confirm")

	defer r.Body.Close()
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			responseWithError(w, http.StatusRequestEntityTooLarge, "файл импорта слишком большой")
			return nil, opts, false
		}
		responseWithError(w, http.StatusBadRequest, "не удалось прочитать тело запроса: "+err.Error())
		return nil, opts, false
	}
	return data, opts, true
}

func (s *TaskHandler) PreviewImport(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	data, opts, ok := readImport(w, r)
	if !ok {
		return
	}

	plan, err := s.TaskService.PreviewImport(r.Context(), data, opts)
	if err != nil {
		serviceError(w, r, err, "preview_import")
		return
	}

	logger.Info("HTTP_OUT: Предпросмотр импорта",
		zap.Int("items", len(plan.Items)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, toPayload("plan", plan))
}

func (s *TaskHandler) ApplyImport(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	data, opts, ok := readImport(w, r)
	if !ok {
		return
	}

	res, err := s.TaskService.ApplyImport(r.Context(), data, opts)
	if err != nil {
		serviceError(w, r, err, "apply_import")
		return
	}

	logger.Info("HTTP_OUT: Импорт применён",
		zap.String("strategy", string(res.Strategy)),
		zap.Int("inserted", len(res.Inserted)),
		zap.Int("updated", len(res.Updated)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, toPayload("result", res))
}
