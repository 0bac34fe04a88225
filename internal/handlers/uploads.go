package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

// maxUploadBytes caps the in-memory portion of multipart parsing; larger
// parts spill to disk.
const maxUploadBytes = 32 << 20

// saveUpload copies the named multipart file to a temporary file and returns
// its path together with a cleanup function. The caller must invoke cleanup
// once the file has been handed to storage.
func saveUpload(r *http.Request, field string) (string, func(), error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil, errBadRequest(fmt.Sprintf("%s file is required", field))
		}
		return "", nil, errBadRequest(fmt.Sprintf("invalid %s file", field))
	}
	defer file.Close()

	tmp, err := os.CreateTemp("", "upload-*"+filepath.Ext(header.Filename))
	if err != nil {
		return "", nil, fmt.Errorf("create temp file: %w", err)
	}

	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", nil, fmt.Errorf("close temp file: %w", err)
	}

	path := tmp.Name()
	return path, func() { os.Remove(path) }, nil
}

// formHasFile reports whether the parsed multipart form carries a file for
// the named field.
func formHasFile(r *http.Request, field string) bool {
	if r.MultipartForm == nil {
		return false
	}
	return len(r.MultipartForm.File[field]) > 0
}
