package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/SakutaArc/QuickFund/internal/core/ports"
)

type CommentHandler struct {
	service ports.CommentService
}

func NewCommentHandler(service ports.CommentService) *CommentHandler {
	return &CommentHandler{service: service}
}

// List handles GET /comments/:projectId.
//
// @Summary      Comments on a project, newest first
// @Tags         comments
// @Produce      json
// @Security     BearerAuth
// @Param        projectId  path      int  true  "Project id"
// @Success      200        {array}   commentResponse
// @Failure      400        {object}  errorResponse
// @Failure      401        {object}  errorResponse
// @Router       /comments/{projectId} [get]
func (h *CommentHandler) List(c echo.Context) error {
	projectID, err := pathID(c, "projectId")
	if err != nil {
		return err
	}

	comments, err := h.service.List(c.Request().Context(), projectID)
	if err != nil {
		return err
	}

	out := make([]commentResponse, 0, len(comments))
	for _, cm := range comments {
		out = append(out, commentResponse{
			ID:         cm.ID,
			UserID:     cm.UserID,
			Username:   cm.Username,
			Content:    cm.Content,
			DatePosted: cm.DatePosted.Format(dateLayout),
		})
	}
	return c.JSON(http.StatusOK, out)
}

// Add handles POST /comments.
//
// @Summary      Comment on a project
// @Tags         comments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      commentRequest  true  "Comment"
// @Success      201   {object}  commentCreatedResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /comments [post]
func (h *CommentHandler) Add(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req commentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	id, err := h.service.Add(c.Request().Context(), userID, req.ProjectID, req.Content)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, commentCreatedResponse{Message: "Comment added successfully!", CommentID: id})
}
