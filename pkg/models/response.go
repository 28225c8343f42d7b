package models

// ErrorResponse is the body of every non-2xx JSON response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code"`
}

// DataResponse is the /data body. Events holds scoreboard events in
// sports mode and matchups in fantasy mode. Alert is null when every
// source loaded.
type DataResponse struct {
	Events interface{} `json:"events"`
	Alert  *string     `json:"alert"`
}

// VersionResponse reports when the process started
type VersionResponse struct {
	Startup string `json:"startup"`
}
