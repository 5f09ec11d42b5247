package domain

// Profile aggregates what a user sees on their own page. Manager and donor
// fields are nil when the matching extension row does not exist.
type Profile struct {
	UserID          int64    `db:"user_id"`
	Username        string   `db:"username"`
	ProjectsManaged *int64   `db:"projects_managed"`
	Rating          *float64 `db:"rating"`
	TotalDonations  *float64 `db:"total_donations"`

	Donations       []DonationSummary `db:"-"`
	CreatedProjects []ProjectSummary  `db:"-"`
}

// DonationSummary is a donation joined with its project title.
type DonationSummary struct {
	ProjectID     int64   `db:"project_id"`
	ProjectTitle  string  `db:"project_title"`
	Amount        float64 `db:"donation_amt"`
	PaymentMethod string  `db:"payment_mthd"`
}

// ProjectSummary is the short project view listed on a manager's profile.
type ProjectSummary struct {
	ID           int64         `db:"project_id"`
	Title        string        `db:"title"`
	GoalAmount   float64       `db:"goal_amt"`
	RaisedAmount float64       `db:"raised_amt"`
	Status       ProjectStatus `db:"status"`
}
