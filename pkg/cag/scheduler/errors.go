package scheduler

import (
	"net/http"

	"github.com/trigoo007/cagcore/pkg/errx"
)

var schedulerErrors = errx.NewRegistry("SCHEDULER")

var ErrAlreadyRunning = schedulerErrors.Register("ALREADY_RUNNING", errx.TypeConflict, http.StatusConflict, "maintenance scheduler is already running")
