package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Harsh-BH/codepractice/internal/delivery/http/middleware"
	"github.com/Harsh-BH/codepractice/internal/domain"
	"github.com/Harsh-BH/codepractice/internal/usecase"
)

// CodeHandler serves the code execution endpoints.
type CodeHandler struct {
	submitUC    *usecase.SubmitCodeUsecase
	resultUC    *usecase.GetResultUsecase
	executeUC   *usecase.ExecuteCodeUsecase
	withTestsUC *usecase.SubmitWithTestsUsecase
	statsUC     *usecase.CodeStatsUsecase
	logger      *zap.Logger
}

func NewCodeHandler(
	submitUC *usecase.SubmitCodeUsecase,
	resultUC *usecase.GetResultUsecase,
	executeUC *usecase.ExecuteCodeUsecase,
	withTestsUC *usecase.SubmitWithTestsUsecase,
	statsUC *usecase.CodeStatsUsecase,
	logger *zap.Logger,
) *CodeHandler {
	return &CodeHandler{
		submitUC:    submitUC,
		resultUC:    resultUC,
		executeUC:   executeUC,
		withTestsUC: withTestsUC,
		statsUC:     statsUC,
		logger:      logger,
	}
}

// Submit handles POST /code/submit
func (h *CodeHandler) Submit(c *gin.Context) {
	var req domain.SubmitCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	resp, err := h.submitUC.Execute(c.Request.Context(), middleware.CallerFrom(c).UserID, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusAccepted, resp)
}

// Result handles GET /code/result/:token
func (h *CodeHandler) Result(c *gin.Context) {
	resp, err := h.resultUC.Execute(c.Request.Context(), middleware.CallerFrom(c).UserID, c.Param("token"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Execute handles POST /code/execute
func (h *CodeHandler) Execute(c *gin.Context) {
	var req domain.ExecuteCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	resp, err := h.executeUC.Execute(c.Request.Context(), middleware.CallerFrom(c).UserID, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SubmitWithTests handles POST /submit-with-tests
func (h *CodeHandler) SubmitWithTests(c *gin.Context) {
	var req domain.SubmitWithTestsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	resp, err := h.withTestsUC.Execute(c.Request.Context(), middleware.CallerFrom(c).UserID, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Stats handles GET /code/stats
func (h *CodeHandler) Stats(c *gin.Context) {
	stats, err := h.statsUC.Execute(c.Request.Context(), middleware.CallerFrom(c).UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
