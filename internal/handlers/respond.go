package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tweettube/backend/internal/logging"
)

// apiError carries an HTTP status alongside a caller-safe message.
type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string { return e.Message }

func errBadRequest(message string) *apiError {
	return &apiError{Status: http.StatusBadRequest, Message: message}
}

func errUnauthorized(message string) *apiError {
	return &apiError{Status: http.StatusUnauthorized, Message: message}
}

func errForbidden(message string) *apiError {
	return &apiError{Status: http.StatusForbidden, Message: message}
}

func errNotFound(message string) *apiError {
	return &apiError{Status: http.StatusNotFound, Message: message}
}

func errConflict(message string) *apiError {
	return &apiError{Status: http.StatusConflict, Message: message}
}

func errInternal(message string) *apiError {
	return &apiError{Status: http.StatusInternalServerError, Message: message}
}

// envelope is the uniform response wrapper used by every endpoint.
type envelope struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

// respondData writes the envelope around data. Before serialization the data
// passes through renameIDKeys, the compatibility shim expected by existing
// clients. Keep that transformation here and nowhere else.
func respondData(ctx context.Context, w http.ResponseWriter, status int, data any, message string) {
	logger := logging.FromContext(ctx)

	value, err := toJSONValue(data)
	if err != nil {
		logger.Error("encode response payload", "error", err)
		status = http.StatusInternalServerError
		value = nil
		message = "failed to encode response"
	}

	body := envelope{
		StatusCode: status,
		Data:       renameIDKeys(value),
		Message:    message,
		Success:    status < http.StatusBadRequest,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("encode response body", "status", status, "error", err)
		return
	}

	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("request failed", "status", status, "message", message)
	case status >= http.StatusBadRequest:
		logger.Warn("request returned client error", "status", status, "message", message)
	}
}

// respondError maps an error onto the envelope. Unknown errors become an
// opaque 500; internal details never reach the caller.
func respondError(ctx context.Context, w http.ResponseWriter, err error) {
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		respondData(ctx, w, apiErr.Status, map[string]any{}, apiErr.Message)
		return
	}

	logging.FromContext(ctx).Error("unexpected handler error", "error", err)
	respondData(ctx, w, http.StatusInternalServerError, map[string]any{}, "Internal server error")
}

// toJSONValue reduces an arbitrary payload to the generic JSON value tree so
// the key-rename pass can walk it.
func toJSONValue(data any) (any, error) {
	if data == nil {
		return map[string]any{}, nil
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, err
	}
	return value, nil
}

// renameIDKeys recursively renames every "id" key to "_id", descending into
// nested objects and arrays. Values under renamed keys are left untouched.
func renameIDKeys(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, inner := range v {
			if key == "id" {
				out["_id"] = inner
				continue
			}
			out[key] = renameIDKeys(inner)
		}
		return out
	case []any:
		for i, inner := range v {
			v[i] = renameIDKeys(inner)
		}
		return v
	default:
		return value
	}
}
