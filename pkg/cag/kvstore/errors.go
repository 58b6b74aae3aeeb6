package kvstore

import (
	"net/http"

	"github.com/trigoo007/cagcore/pkg/errx"
)

var kvErrors = errx.NewRegistry("KVSTORE")

var (
	ErrReadFailed  = kvErrors.Register("READ_FAILED", errx.TypeExternal, http.StatusInternalServerError, "failed to read key")
	ErrWriteFailed = kvErrors.Register("WRITE_FAILED", errx.TypeExternal, http.StatusInternalServerError, "failed to write key")
)
