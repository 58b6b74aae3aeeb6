package contextmanager

import (
	"net/http"

	"github.com/trigoo007/cagcore/pkg/errx"
)

var managerErrors = errx.NewRegistry("CONTEXT_MANAGER")

var (
	ErrLockTimeout       = managerErrors.Register("LOCK_TIMEOUT", errx.TypeConflict, http.StatusConflict, "timed out acquiring conversation lock")
	ErrNotFound          = managerErrors.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "context not found")
	ErrUnauthorized      = managerErrors.Register("UNAUTHORIZED", errx.TypeAuthorization, http.StatusForbidden, "user is not authorized to modify this context")
	ErrPersistFailed     = managerErrors.Register("PERSIST_FAILED", errx.TypeExternal, http.StatusInternalServerError, "failed to persist context map")
	ErrFragmentReadFailed = managerErrors.Register("FRAGMENT_READ_FAILED", errx.TypeExternal, http.StatusInternalServerError, "failed to read context fragment")
	ErrValidationFailed  = managerErrors.Register("VALIDATION_FAILED", errx.TypeValidation, http.StatusBadRequest, "context map failed schema validation")
	ErrVersionNotFound   = managerErrors.Register("VERSION_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "context version not found")
)
