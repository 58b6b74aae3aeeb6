package cache

import (
	"net/http"

	"github.com/trigoo007/cagcore/pkg/errx"
)

var cacheErrors = errx.NewRegistry("CACHE")

var (
	ErrDiskReadFailed  = cacheErrors.Register("DISK_READ_FAILED", errx.TypeExternal, http.StatusInternalServerError, "failed to read cache entry from disk")
	ErrDiskWriteFailed = cacheErrors.Register("DISK_WRITE_FAILED", errx.TypeExternal, http.StatusInternalServerError, "failed to write cache entry to disk")
)
