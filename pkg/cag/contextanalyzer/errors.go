package contextanalyzer

import (
	"net/http"

	"github.com/trigoo007/cagcore/pkg/errx"
)

var analyzerErrors = errx.NewRegistry("CONTEXT_ANALYZER")

var (
	ErrHistoryLoadFailed = analyzerErrors.Register("HISTORY_LOAD_FAILED", errx.TypeExternal, http.StatusBadGateway, "failed to load conversation history")
	ErrMemoryLoadFailed  = analyzerErrors.Register("MEMORY_LOAD_FAILED", errx.TypeExternal, http.StatusInternalServerError, "failed to load conversation memory")
	ErrMemoryUpdateFailed = analyzerErrors.Register("MEMORY_UPDATE_FAILED", errx.TypeExternal, http.StatusInternalServerError, "failed to update conversation memory")
)
