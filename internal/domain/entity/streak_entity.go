package entity

// Streak counts consecutive calendar days with a completed routine.
// LastCompletedDate is YYYY-MM-DD or empty.
type Streak struct {
	CurrentStreak     int    `json:"current_streak"`
	LastCompletedDate string `json:"last_completed_date"`
}

type StreakOutcome string

const (
	StreakAlreadyCompleted StreakOutcome = "already_completed"
	StreakUpdated          StreakOutcome = "updated"
)
