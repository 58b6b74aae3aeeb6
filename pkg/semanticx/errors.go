package semanticx

import (
	"net/http"

	"github.com/trigoo007/cagcore/pkg/errx"
)

var errorRegistry = errx.NewRegistry("SEMANTIC")

var (
	ErrEmptyInput        = errorRegistry.Register("EMPTY_INPUT", errx.TypeValidation, http.StatusBadRequest, "embedding input cannot be empty")
	ErrProviderUnavailable = errorRegistry.Register("PROVIDER_UNAVAILABLE", errx.TypeExternal, http.StatusBadGateway, "embedding provider unavailable")
	ErrNoEmbeddingReturned = errorRegistry.Register("NO_EMBEDDING_RETURNED", errx.TypeExternal, http.StatusBadGateway, "provider returned no embedding data")
)
