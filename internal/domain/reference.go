package domain

import "time"

// Category is seeded reference data issues are classified under.
type Category struct {
	ID        string
	Name      string
	IsActive  bool
	CreatedAt time.Time
}

// Priority is seeded reference data ranking issue urgency.
type Priority struct {
	ID        string
	Name      string
	Rank      int
	IsActive  bool
	CreatedAt time.Time
}
