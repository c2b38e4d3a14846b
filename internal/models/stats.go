package models

type LinkStats struct {
	ShortCode        string          `json:"short_code"`
	TargetURL        string          `json:"target_url"`
	TotalClicks      int64           `json:"total_clicks"`
	TotalEarnings    float64         `json:"total_earnings"`
	MonthlyBreakdown []MonthlyClicks `json:"monthly_breakdown"`
}

type StatsResponse struct {
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	TotalLinks int64       `json:"total_links"`
	Links      []LinkStats `json:"links"`
}
