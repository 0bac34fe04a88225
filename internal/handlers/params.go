package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// pathID reads a UUID path parameter, rejecting malformed values before they
// reach the database.
func pathID(r *http.Request, name string) (string, error) {
	value := r.PathValue(name)
	if uuid.Validate(value) != nil {
		return "", errBadRequest(fmt.Sprintf("Invalid %s", name))
	}
	return value, nil
}

// pageParams reads the page/limit query parameters, clamping them to sane
// bounds.
func pageParams(r *http.Request) (page, limit int) {
	page = intQuery(r, "page", defaultPage)
	if page < 1 {
		page = defaultPage
	}

	limit = intQuery(r, "limit", defaultLimit)
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	return page, limit
}

func intQuery(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
