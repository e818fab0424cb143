// Package repository implements the data access layer for the application.
// Repositories validate caller input, stamp ownership, and translate the
// store's matched-count results into the error taxonomy; the backend behind
// the store contract stays invisible above this layer.
package repository

import (
	"dayboard/internal/middleware"
	"dayboard/internal/models"
)

// observe records a store failure for the given collection before passing it
// through.
func observe(collection string, err error) error {
	if err != nil {
		middleware.StoreErrors.WithLabelValues(collection, models.ErrorCode(err)).Inc()
	}
	return err
}
