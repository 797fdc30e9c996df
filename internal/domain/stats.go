package domain

type IncidentStats struct {
	ByStatus map[IncidentStatus]int64 `json:"by_status"`
	Total    int64                    `json:"total"`
	Minutes  int                      `json:"minutes"`
}

type StatsRequest struct {
	Minutes int `json:"minutes" validate:"min=1,max=1440"`
}
