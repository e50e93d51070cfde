package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ginjaninja78/hscode-reconciler/internal/analyzer"
	recerrors "github.com/ginjaninja78/hscode-reconciler/internal/errors"
	"github.com/ginjaninja78/hscode-reconciler/internal/validation"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error   string               `json:"error"`
	Stage   string               `json:"stage,omitempty"`
	Details string               `json:"details,omitempty"`
	Reports []*validation.Report `json:"reports,omitempty"`
}

func respondError(c *gin.Context, status int, msg string, details ...string) {
	resp := ErrorResponse{Error: msg}
	if len(details) > 0 {
		resp.Details = details[0]
	}
	c.AbortWithStatusJSON(status, resp)
}

// respondAnalysisError maps pipeline errors to HTTP responses:
//   - invalid input and empty stages are 422
//   - anything else is 500
func respondAnalysisError(c *gin.Context, err error) {
	var inputErr *analyzer.InputError
	switch {
	case errors.As(err, &inputErr):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "Input files failed validation",
			Details: err.Error(),
			Reports: inputErr.Reports,
		})
	case recerrors.IsNoData(err):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error: err.Error(),
			Stage: string(recerrors.StageOf(err)),
		})
	default:
		respondError(c, http.StatusInternalServerError, "Failed to process files", err.Error())
	}
}
