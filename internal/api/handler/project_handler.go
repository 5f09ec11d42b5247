package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/SakutaArc/QuickFund/internal/api/metrics"
	"github.com/SakutaArc/QuickFund/internal/core/ports"
)

// ProjectHandler serves the project registry.
type ProjectHandler struct {
	service ports.ProjectService
}

func NewProjectHandler(service ports.ProjectService) *ProjectHandler {
	return &ProjectHandler{service: service}
}

// Create handles POST /createproject.
//
// @Summary      Create a project with tags and rewards
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createProjectRequest  true  "Project details"
// @Success      201   {object}  createdResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /createproject [post]
func (h *ProjectHandler) Create(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req createProjectRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	start, end, err := parseDates(req.StartDate, req.EndDate)
	if err != nil {
		return err
	}

	rewards := make([]ports.RewardInput, 0, len(req.Rewards))
	for _, r := range req.Rewards {
		rewards = append(rewards, ports.RewardInput{Description: r.Description, MinDonation: r.MinDonation})
	}

	id, err := h.service.Create(c.Request().Context(), ports.CreateProjectInput{
		ManagerID: userID,
		Title:     req.Title,
		Goal:      req.Goal,
		FAQ:       req.FAQ,
		StartDate: start,
		EndDate:   end,
		Tags:      req.Tags,
		Rewards:   rewards,
	})
	if err != nil {
		return err
	}

	metrics.ProjectsCreatedTotal.Inc()
	return c.JSON(http.StatusCreated, createdResponse{Message: "Project created successfully!", ProjectID: id})
}

// Get handles GET /projects/:id.
//
// @Summary      Get a project with its tags and rewards
// @Tags         projects
// @Produce      json
// @Param        id   path      int  true  "Project id"
// @Success      200  {object}  projectResponse
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /projects/{id} [get]
func (h *ProjectHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	p, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProjectResponse(*p))
}

// Popular handles GET /projects.
//
// @Summary      Best-funded projects
// @Description  Top five projects by raised/goal ratio.
// @Tags         projects
// @Produce      json
// @Success      200  {array}   projectResponse
// @Router       /projects [get]
func (h *ProjectHandler) Popular(c echo.Context) error {
	projects, err := h.service.Popular(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProjectList(projects))
}

// Search handles GET /search.
//
// @Summary      Search projects
// @Tags         projects
// @Produce      json
// @Param        query  query     string  false  "Case-insensitive title substring"
// @Param        tags   query     string  false  "Comma-separated tag values"
// @Success      200    {array}   projectResponse
// @Failure      400    {object}  errorResponse
// @Router       /search [get]
func (h *ProjectHandler) Search(c echo.Context) error {
	var tags []string
	for _, v := range c.QueryParams()["tags"] {
		tags = append(tags, strings.Split(v, ",")...)
	}

	projects, err := h.service.Search(c.Request().Context(), ports.ProjectSearchFilter{
		Query: c.QueryParam("query"),
		Tags:  tags,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProjectList(projects))
}

// Update handles PUT /projects/:id.
//
// @Summary      Replace a project's editable fields
// @Tags         projects
// @Accept       json
// @Produce      json
// @Param        id    path      int                   true  "Project id"
// @Param        body  body      updateProjectRequest  true  "New values"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /projects/{id} [put]
func (h *ProjectHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req updateProjectRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	start, end, err := parseDates(req.StartDate, req.EndDate)
	if err != nil {
		return err
	}

	err = h.service.Update(c.Request().Context(), ports.UpdateProjectInput{
		ID:        id,
		Title:     req.Title,
		FAQ:       req.FAQ,
		Goal:      req.Goal,
		Raised:    *req.Raised,
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Project updated successfully."})
}

func parseDates(startRaw, endRaw string) (time.Time, time.Time, error) {
	start, err := time.Parse(dateLayout, startRaw)
	if err != nil {
		return time.Time{}, time.Time{}, echo.NewHTTPError(http.StatusBadRequest, "startDate must be YYYY-MM-DD")
	}
	end, err := time.Parse(dateLayout, endRaw)
	if err != nil {
		return time.Time{}, time.Time{}, echo.NewHTTPError(http.StatusBadRequest, "endDate must be YYYY-MM-DD")
	}
	return start, end, nil
}
