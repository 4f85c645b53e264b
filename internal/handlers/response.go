package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"taskManager/internal/logger"

	"go.uber.org/zap"
)

// Payload - одно поле верхнего уровня JSON-ответа
type Payload struct {
	Key   string
	Value any
}

func toPayload(key string, value any) Payload {
	return Payload{Key: key, Value: value}
}

// envelope собирает поля ответа; повторный ключ перезаписывает предыдущий
func envelope(fields []Payload) map[string]any {
	body := make(map[string]any, len(fields))
	for _, f := range fields {
		body[f.Key] = f.Value
	}
	return body
}

func responseWithJSON(w http.ResponseWriter, code int, fields ...Payload) {
	body, err := json.Marshal(envelope(fields))
	if err != nil {
		logger.Error("HTTP: Ответ не сериализован", err, zap.Int("http_status", code))
		code = http.StatusInternalServerError
		body, _ = json.Marshal(envelope([]Payload{
			toPayload("error", errorCode(code)),
			toPayload("message", "ответ не удалось сериализовать"),
		}))
	}
	body = append(body, '\n')

	h := w.Header()
	h.Set("Content-Type", "application/json; charset=utf-8")
	h.Set("Content-Length", strconv.Itoa(len(body)))
	h.Set("Cache-Control", "no-store")
	w.WriteHeader(code)

	if _, err := w.Write(body); err != nil {
		logger.Warn("HTTP: Ответ не отправлен", zap.Error(err), zap.Int("http_status", code))
	}
}

// responseWithError отвечает в том же виде, что и бизнес-ошибки: код и сообщение
func responseWithError(w http.ResponseWriter, code int, message string) {
	responseWithJSON(w, code,
		toPayload("error", errorCode(code)),
		toPayload("message", message))
}

// errorCode: 415 -> UNSUPPORTED_MEDIA_TYPE
func errorCode(status int) string {
	text := http.StatusText(status)
	if text == "" {
		return "HTTP_" + strconv.Itoa(status)
	}
	return strings.ToUpper(strings.NewReplacer(" ", "_", "-", "_", "'", "").Replace(text))
}
