package models

// HistoryRequest filters the signal history endpoint.
type HistoryRequest struct {
	Limit int    `query:"limit" default:"50" validate:"omitempty,min=1,max=500"`
	Since string `query:"since" validate:"omitempty"`
}

// LogsRequest bounds the diagnostics log endpoint.
type LogsRequest struct {
	Limit int `query:"limit" default:"100" validate:"omitempty,min=1,max=1000"`
}
