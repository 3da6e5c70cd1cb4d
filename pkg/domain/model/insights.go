package model

// Insights are the dashboard counters. A nil counter failed to load.
type Insights struct {
	Patients    *int64 `json:"patients"`
	Submissions *int64 `json:"submissions"`
	RedAlerts   *int64 `json:"red_alerts"`
	Responses   *int64 `json:"responses"`
}
