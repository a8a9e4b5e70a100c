// Package service contains the business logic of the API.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → decodes requests, writes responses
//	Service (business layer) → permissions, validation, overlays, orchestration
//	Repository (data layer)  → reads/writes SQLite
//
// Every operation that acts on behalf of someone takes the acting
// *model.Principal as an explicit argument (nil means anonymous). Nothing in
// this package reads identity from the context, so the same calls work from
// HTTP handlers, the admin CLI and tests.
//
// Writes check in a fixed order and stop at the first failure:
//
//	authentication (401) → parent/object lookup (404) → object permission (403)
//	→ payload validation (400) → overlay of server-owned fields → persist
//
// "Overlay" means the fields a client must never choose (a post's author, a
// comment's author and post, a follow's user) are set from the principal and
// the resolved parent on the record being saved. The decoded payload does not
// even have those fields.
package service

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/yatube/internal/apperror"
)

// Pagination bounds for the posts list.
const (
	MaxListLimit = 100
)

// wrap adds context to err. Unexpected errors (anything that is not one of
// the typed app errors) are logged at Error level first; NotFound and
// validation failures are normal outcomes and stay out of the error log.
func wrap(logger *slog.Logger, op string, err error, attrs ...any) error {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		logger.Error("failed "+op, append(attrs, slog.String("error", err.Error()))...)
	}
	return fmt.Errorf("%s: %w", op, err)
}
