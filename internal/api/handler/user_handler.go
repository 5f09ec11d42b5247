package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/SakutaArc/QuickFund/internal/core/ports"
)

// UserHandler serves the authenticated user's own account.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// Me handles GET /users/me.
//
// @Summary      Profile of the current user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  profileResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /users/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	p, err := h.service.Profile(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	resp := profileResponse{
		UserID:          p.UserID,
		Username:        p.Username,
		ProjectsManaged: p.ProjectsManaged,
		Rating:          p.Rating,
		TotalDonations:  p.TotalDonations,
		Donations:       make([]profileDonation, 0, len(p.Donations)),
		CreatedProjects: make([]profileProject, 0, len(p.CreatedProjects)),
	}
	for _, d := range p.Donations {
		resp.Donations = append(resp.Donations, profileDonation{
			ProjectID:     d.ProjectID,
			ProjectTitle:  d.ProjectTitle,
			Amount:        d.Amount,
			PaymentMethod: d.PaymentMethod,
		})
	}
	for _, cp := range p.CreatedProjects {
		resp.CreatedProjects = append(resp.CreatedProjects, profileProject{
			ID:     cp.ID,
			Title:  cp.Title,
			Goal:   cp.GoalAmount,
			Raised: cp.RaisedAmount,
			Status: string(cp.Status),
		})
	}
	return c.JSON(http.StatusOK, resp)
}

// Update handles PUT /users/update.
//
// @Summary      Change username and password
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      credentialsRequest  true  "New credentials"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /users/update [put]
func (h *UserHandler) Update(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req credentialsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.service.UpdateCredentials(c.Request().Context(), userID, req.Username, req.Password); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "User updated successfully"})
}

// Delete handles DELETE /users/delete.
//
// @Summary      Delete the current account
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /users/delete [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), userID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "User deleted successfully."})
}
