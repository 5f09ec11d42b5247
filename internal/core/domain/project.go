package domain

import (
	"errors"
	"time"
)

// ProjectStatus represents the lifecycle state of a campaign.
type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectCompleted ProjectStatus = "completed"
	ProjectPaused    ProjectStatus = "paused"
)

var (
	ErrProjectNotFound = errors.New("project not found")
	ErrManagerNotFound = errors.New("project manager not found")
)

// Project is a crowdfunding campaign owned by a manager.
//
// RaisedAmount is maintained by the ledger: it always equals the sum of the
// project's donation rows and is never recomputed on read.
type Project struct {
	ID           int64         `db:"project_id"`
	Title        string        `db:"title"`
	GoalAmount   float64       `db:"goal_amt"`
	RaisedAmount float64       `db:"raised_amt"`
	FAQ          string        `db:"faq"`
	StartDate    time.Time     `db:"start_date"`
	EndDate      time.Time     `db:"end_date"`
	Status       ProjectStatus `db:"status"`
	ManagerID    int64         `db:"manager_id"`

	Tags    []string `db:"-"`
	Rewards []Reward `db:"-"`
}

// FundingRatio is raised/goal, the ordering key for listings.
func (p Project) FundingRatio() float64 {
	if p.GoalAmount <= 0 {
		return 0
	}
	return p.RaisedAmount / p.GoalAmount
}

// Reward is a perk unlocked by donating at least MinDonation.
type Reward struct {
	ID          int64   `db:"reward_id"`
	ProjectID   int64   `db:"project_id"`
	Description string  `db:"description"`
	MinDonation float64 `db:"min_donation"`
}
