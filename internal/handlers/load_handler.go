package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"jsonnorm/internal/responses"
	"jsonnorm/internal/services"
)

type LoadHandler struct {
	loadService *services.LoadService
}

func NewLoadHandler(loadService *services.LoadService) *LoadHandler {
	return &LoadHandler{
		loadService: loadService,
	}
}

func (h *LoadHandler) CreateLoad(c *gin.Context) {
	var req services.NormalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	result, err := h.loadService.Load(c.Request.Context(), &req)
	if err != nil {
		responses.Fail(c, statusForError(err), err, "Error while loading the document")
		return
	}

	responses.Success(c, http.StatusCreated, result, "Document loaded successfully")
}

func (h *LoadHandler) ListLoads(c *gin.Context) {
	limit := 0
	if l := c.Query("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil {
			responses.Fail(c, http.StatusBadRequest, err, "Invalid limit parameter")
			return
		}
		limit = parsed
	}

	runs, err := h.loadService.History(limit)
	if err != nil {
		responses.Fail(c, http.StatusInternalServerError, err, "Error while fetching load history")
		return
	}

	responses.Success(c, http.StatusOK, gin.H{"runs": runs}, "Load history fetched successfully")
}
