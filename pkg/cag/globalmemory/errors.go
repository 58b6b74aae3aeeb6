package globalmemory

import (
	"net/http"

	"github.com/trigoo007/cagcore/pkg/errx"
)

var globalErrors = errx.NewRegistry("GLOBAL_MEMORY")

var (
	ErrStoreReadFailed  = globalErrors.Register("STORE_READ_FAILED", errx.TypeExternal, http.StatusInternalServerError, "failed to read global memory document")
	ErrStoreWriteFailed = globalErrors.Register("STORE_WRITE_FAILED", errx.TypeExternal, http.StatusInternalServerError, "failed to write global memory document")
	ErrEntityNotFound   = globalErrors.Register("ENTITY_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "entity not found in global memory")
	ErrBackupFailed     = globalErrors.Register("BACKUP_FAILED", errx.TypeExternal, http.StatusInternalServerError, "failed to back up global memory before reset")
)
