package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nullpulse/sentinel/internal/apperr"
	"github.com/nullpulse/sentinel/internal/http/handlers"
)

// respondErr renders any apperr.StatusCoder through the existing
// handlers.RespondError family, so the domain layer can hand back a typed
// error kind without reaching into the HTTP layer for status codes.
func respondErr(ctx *gin.Context, err error) {
	switch e := err.(type) {
	case *apperr.AuthError:
		handlers.RespondError(ctx, http.StatusUnauthorized, "auth_failed", e.Message, nil)
	case *apperr.ValidationError:
		handlers.RespondBadRequest(ctx, e.Message, e.Details)
	case *apperr.NotFoundError:
		handlers.RespondNotFound(ctx, e.Message)
	case *apperr.TransientStoreError:
		handlers.RespondInternal(ctx, e.Message)
	default:
		handlers.RespondInternal(ctx, "Internal error")
	}
}
