package memory

import (
	"net/http"

	"github.com/trigoo007/cagcore/pkg/errx"
)

var memoryErrors = errx.NewRegistry("MEMORY")

var (
	ErrStorageReadFailed  = memoryErrors.Register("STORAGE_READ_FAILED", errx.TypeExternal, http.StatusInternalServerError, "failed to read memory document")
	ErrStorageWriteFailed = memoryErrors.Register("STORAGE_WRITE_FAILED", errx.TypeExternal, http.StatusInternalServerError, "failed to write memory document")
	ErrBackupFailed       = memoryErrors.Register("BACKUP_FAILED", errx.TypeExternal, http.StatusInternalServerError, "failed to back up memory before reset")
)
