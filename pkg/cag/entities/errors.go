package entities

import (
	"net/http"

	"github.com/trigoo007/cagcore/pkg/errx"
)

var entityErrors = errx.NewRegistry("ENTITY")

var (
	ErrCatalogLoadFailed = entityErrors.Register("CATALOG_LOAD_FAILED", errx.TypeExternal, http.StatusInternalServerError, "failed to load entity catalog")
	ErrCatalogSaveFailed = entityErrors.Register("CATALOG_SAVE_FAILED", errx.TypeExternal, http.StatusInternalServerError, "failed to save entity catalog")
)
