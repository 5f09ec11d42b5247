package domain

import "time"

// Comment is a discussion message on a project. Username is filled on reads.
type Comment struct {
	ID         int64     `db:"comment_id"`
	ProjectID  int64     `db:"project_id"`
	UserID     int64     `db:"user_id"`
	Username   string    `db:"username"`
	Content    string    `db:"content"`
	DatePosted time.Time `db:"date_posted"`
}
