package dto

type TestNotificationRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// ThirdPartyNotifyRequest is accepted on the token protected notify endpoint.
type ThirdPartyNotifyRequest struct {
	Title   string   `json:"title"`
	Content string   `json:"content" validate:"required"`
	Tags    []string `json:"tags"`
}

type LunarConvertResponse struct {
	Year      int    `json:"year"`
	Month     int    `json:"month"`
	Day       int    `json:"day"`
	IsLeap    bool   `json:"isLeap"`
	YearName  string `json:"yearName"`
	MonthName string `json:"monthName"`
	DayName   string `json:"dayName"`
	FullStr   string `json:"fullStr"`
}

type TriggerRunResponse struct {
	Queued bool   `json:"queued"`
	Source string `json:"source"`
}
