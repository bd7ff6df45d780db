package storage

import "time"

// Slot is one saved game blob.
type Slot struct {
	Key       string
	Version   int
	Blob      []byte
	UpdatedAt time.Time
}

type MissionLogEntry struct {
	ID          int64
	MissionID   string
	Title       string
	Category    string
	Kind        string
	XPGained    int
	Day         int
	CompletedAt time.Time
}

// CategoryTotal is the number of completions and XP earned in one category.
type CategoryTotal struct {
	Category string
	Count    int
	XP       int
}
