package entities

type WeekProgress struct {
	Phase           int      `json:"phase"`
	Week            int      `json:"week"`
	Title           string   `json:"title"`
	Unlocked        bool     `json:"unlocked"`
	Completed       bool     `json:"completed"`
	Drills          []string `json:"drills"`
	CompletedDrills []string `json:"completedDrills"`
}

type ProgressResponse struct {
	Email        string         `json:"email"`
	CurrentPhase int            `json:"currentPhase"`
	CurrentWeek  int            `json:"currentWeek"`
	Weeks        []WeekProgress `json:"weeks"`
}

type CompleteDrillRequest struct {
	Email   string `json:"email"`
	DrillID string `json:"drillId"`
}
