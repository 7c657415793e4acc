package feedback

import "time"

// Event is a single feedback grant as stored. IsManagerFeedback is already a
// proper bool here; legacy 0/1 values are converted before events are built.
type Event struct {
	ID                string    `json:"id"`
	EmployeeID        string    `json:"employee_id"`
	EmployeeName      string    `json:"employee_name,omitempty"`
	ManagerID         string    `json:"manager_id,omitempty"`
	ManagerName       string    `json:"manager_name"`
	PointType         PointType `json:"point_type"`
	IsManagerFeedback bool      `json:"is_manager_feedback"`
	Category          string    `json:"category"`
	Comment           string    `json:"comment"`
	Timestamp         time.Time `json:"timestamp"`
}

type NewEvent struct {
	EmployeeID        string
	ManagerID         string
	PointType         PointType
	IsManagerFeedback bool
	Category          string
	Comment           string
	Timestamp         time.Time
}

type Stats struct {
	Red           int     `json:"red"`
	RedManager    int     `json:"redManager"`
	RedPeer       int     `json:"redPeer"`
	Black         int     `json:"black"`
	Total         int     `json:"total"`
	TotalOfficial int     `json:"totalOfficial"`
	PercentageRed float64 `json:"percentageRed"`
	Rating        Rating  `json:"rating"`
	RatingLabel   string  `json:"ratingLabel"`
}

type CategoryStat struct {
	Category   string `json:"category"`
	RedManager int    `json:"redManager"`
	RedPeer    int    `json:"redPeer"`
	Black      int    `json:"black"`
	Total      int    `json:"total"`
}

type Badge struct {
	Icon  string `json:"icon"`
	Label string `json:"label"`
}

type Category struct {
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	SortOrder int    `json:"sortOrder"`
}

// Member is a person that can appear in a team ranking.
type Member struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Department string `json:"departament"`
	Function   string `json:"functia"`
}

type MemberStats struct {
	Member
	Stats
	Rank int `json:"rank"`
}

type TeamStats struct {
	Team    Stats         `json:"team"`
	Ranking []MemberStats `json:"ranking"`
}

type Contact struct {
	ID    string
	Name  string
	Email string
}

type GrantorCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}
