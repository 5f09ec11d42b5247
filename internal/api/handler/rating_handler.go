package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/SakutaArc/QuickFund/internal/api/metrics"
	"github.com/SakutaArc/QuickFund/internal/core/ports"
)

type RatingHandler struct {
	service ports.RatingService
}

func NewRatingHandler(service ports.RatingService) *RatingHandler {
	return &RatingHandler{service: service}
}

// Submit handles POST /manager-rating.
//
// @Summary      Rate the manager of a project
// @Tags         ratings
// @Accept       json
// @Produce      json
// @Param        body  body      ratingRequest  true  "Rating"
// @Success      200   {object}  ratingResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /manager-rating [post]
func (h *RatingHandler) Submit(c echo.Context) error {
	var req ratingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	avg, err := h.service.Submit(c.Request().Context(), req.ProjectID, *req.Rating)
	if err != nil {
		return err
	}

	metrics.RatingsSubmittedTotal.Inc()
	return c.JSON(http.StatusOK, ratingResponse{NewAverageRating: avg})
}
