package handler

import (
	"time"

	"github.com/SakutaArc/QuickFund/internal/core/domain"
)

const dateLayout = "2006-01-02"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --- Auth ---

type credentialsRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type signupResponse struct {
	Message string `json:"message"`
	UserID  int64  `json:"userId"`
}

type loginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

// --- Projects ---

type rewardRequest struct {
	Description string  `json:"description" validate:"required"`
	MinDonation float64 `json:"minDonation" validate:"gte=0"`
}

type createProjectRequest struct {
	Title     string          `json:"title"     validate:"required"`
	Goal      float64         `json:"goal"      validate:"required,gt=0"`
	FAQ       string          `json:"faq"       validate:"required"`
	StartDate string          `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate   string          `json:"endDate"   validate:"required,datetime=2006-01-02"`
	Tags      []string        `json:"tags"`
	Rewards   []rewardRequest `json:"rewards"   validate:"dive"`
}

// updateProjectRequest replaces every editable field. Raised is a pointer so
// that an explicit 0 is accepted while an absent value is not.
type updateProjectRequest struct {
	Title     string   `json:"title"     validate:"required"`
	FAQ       string   `json:"faq"       validate:"required"`
	Goal      float64  `json:"goal"      validate:"required,gt=0"`
	Raised    *float64 `json:"raised"    validate:"required"`
	StartDate string   `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate   string   `json:"endDate"   validate:"required,datetime=2006-01-02"`
}

type createdResponse struct {
	Message   string `json:"message"`
	ProjectID int64  `json:"projectId"`
}

type rewardResponse struct {
	ID          int64   `json:"rewardId"`
	Description string  `json:"description"`
	MinDonation float64 `json:"minDonation"`
}

type projectResponse struct {
	ID        int64            `json:"projectId"`
	Title     string           `json:"title"`
	Goal      float64          `json:"goal"`
	Raised    float64          `json:"raised"`
	FAQ       string           `json:"faq"`
	StartDate string           `json:"startDate"`
	EndDate   string           `json:"endDate"`
	Status    string           `json:"status"`
	ManagerID int64            `json:"managerId"`
	Tags      []string         `json:"tags,omitempty"`
	Rewards   []rewardResponse `json:"rewards,omitempty"`
}

func toProjectResponse(p domain.Project) projectResponse {
	resp := projectResponse{
		ID:        p.ID,
		Title:     p.Title,
		Goal:      p.GoalAmount,
		Raised:    p.RaisedAmount,
		FAQ:       p.FAQ,
		StartDate: p.StartDate.Format(dateLayout),
		EndDate:   p.EndDate.Format(dateLayout),
		Status:    string(p.Status),
		ManagerID: p.ManagerID,
		Tags:      p.Tags,
	}
	for _, r := range p.Rewards {
		resp.Rewards = append(resp.Rewards, rewardResponse{ID: r.ID, Description: r.Description, MinDonation: r.MinDonation})
	}
	return resp
}

func toProjectList(projects []domain.Project) []projectResponse {
	out := make([]projectResponse, 0, len(projects))
	for _, p := range projects {
		out = append(out, toProjectResponse(p))
	}
	return out
}

// --- Ledger ---

type donateRequest struct {
	ProjectID     int64   `json:"projectId"     validate:"required"`
	Amount        float64 `json:"donationAmt"   validate:"cents"`
	PaymentMethod string  `json:"paymentMethod"`
}

type refundRequest struct {
	Amount float64 `json:"refundAmount" validate:"cents"`
}

type balanceResponse struct {
	Message string  `json:"message"`
	Donated float64 `json:"donated"`
	Raised  float64 `json:"raised"`
}

type donationResponse struct {
	UserID        int64   `json:"userId"`
	Amount        float64 `json:"donationAmt"`
	PaymentMethod string  `json:"paymentMethod"`
}

type ledgerEntryResponse struct {
	ID            string  `json:"id"`
	Kind          string  `json:"kind"`
	UserID        int64   `json:"userId"`
	Amount        float64 `json:"amount"`
	PaymentMethod string  `json:"paymentMethod,omitempty"`
	RaisedAfter   float64 `json:"raisedAfter"`
	RecordedAt    string  `json:"recordedAt"`
}

// --- Discussion ---

type commentRequest struct {
	ProjectID int64  `json:"projectId" validate:"required"`
	Content   string `json:"content"   validate:"required"`
}

type commentCreatedResponse struct {
	Message   string `json:"message"`
	CommentID int64  `json:"commentId"`
}

type commentResponse struct {
	ID         int64  `json:"commentId"`
	UserID     int64  `json:"userId"`
	Username   string `json:"username"`
	Content    string `json:"content"`
	DatePosted string `json:"datePosted"`
}

// --- Profile ---

type profileDonation struct {
	ProjectID     int64   `json:"projectId"`
	ProjectTitle  string  `json:"projectTitle"`
	Amount        float64 `json:"amount"`
	PaymentMethod string  `json:"paymentMethod"`
}

type profileProject struct {
	ID     int64   `json:"projectId"`
	Title  string  `json:"title"`
	Goal   float64 `json:"goal"`
	Raised float64 `json:"raised"`
	Status string  `json:"status"`
}

type profileResponse struct {
	UserID          int64             `json:"userId"`
	Username        string            `json:"username"`
	ProjectsManaged *int64            `json:"projectsManaged"`
	Rating          *float64          `json:"rating"`
	TotalDonations  *float64          `json:"totalDonations"`
	Donations       []profileDonation `json:"donations"`
	CreatedProjects []profileProject  `json:"createdProjects"`
}

// --- Rating ---

type ratingRequest struct {
	ProjectID int64    `json:"projectId" validate:"required"`
	Rating    *float64 `json:"rating"    validate:"required"`
}

type ratingResponse struct {
	NewAverageRating float64 `json:"newAverageRating"`
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
