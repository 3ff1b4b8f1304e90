package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"jsonnorm/internal/normalizer"
	"jsonnorm/internal/responses"
	"jsonnorm/internal/services"
)

type NormalizeHandler struct {
	normalizeService *services.NormalizeService
}

func NewNormalizeHandler(normalizeService *services.NormalizeService) *NormalizeHandler {
	return &NormalizeHandler{
		normalizeService: normalizeService,
	}
}

func (h *NormalizeHandler) Normalize(c *gin.Context) {
	var req services.NormalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	result, err := h.normalizeService.Normalize(&req)
	if err != nil {
		responses.Fail(c, statusForError(err), err, "Error while normalizing the document")
		return
	}

	responses.Success(c, http.StatusOK, result, "Document normalized successfully")
}

// statusForError maps the normalizer's error taxonomy onto HTTP statuses:
// structural and naming problems are the caller's input to fix, so they get
// 422; a malformed document gets 400; everything else is a server error.
func statusForError(err error) int {
	var (
		naming     *normalizer.NamingConflictError
		reserved   *normalizer.ReservedFieldConflictError
		ambiguous  *normalizer.StructuralAmbiguityError
		untypeable *normalizer.TypeInferenceError
	)
	switch {
	case errors.As(err, &naming),
		errors.As(err, &reserved),
		errors.As(err, &ambiguous),
		errors.As(err, &untypeable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, normalizer.ErrInvalidDocument):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
