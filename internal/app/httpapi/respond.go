package httpapi

import (
	"encoding/json"
	"io"
	"net/http"

	apperrors "github.com/gridchain/puzzle_layer/internal/errors"
	"github.com/gridchain/puzzle_layer/pkg/logger"
)

// envelope is the wire shape of every response: either data or error is set.
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Total   *int        `json:"total,omitempty"`
	Error   *wireError  `json:"error,omitempty"`
}

type wireError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func decodeJSON(body io.ReadCloser, dst interface{}) error {
	defer body.Close()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeData(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: true, Data: data})
}

// writeListData is writeData plus the page-independent total.
func writeListData(w http.ResponseWriter, status int, data interface{}, total int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: true, Data: data, Total: &total})
}

// writeServiceError maps an error onto the envelope. Unclassified errors
// become opaque internal errors; their cause is logged, never sent.
func writeServiceError(w http.ResponseWriter, log *logger.Logger, err error) {
	svcErr := apperrors.GetServiceError(err)
	if svcErr == nil {
		svcErr = apperrors.Internal("internal error", err)
	}
	if svcErr.Code == apperrors.CodeInternal && log != nil {
		log.WithError(err).Error("request failed")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(svcErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(envelope{
		Success: false,
		Error:   &wireError{Code: string(svcErr.Code), Message: svcErr.Message},
	})
}
