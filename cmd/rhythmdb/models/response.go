package models

// APIResponse is the wire envelope every endpoint returns. Data is omitted
// for plain status/message replies.
type APIResponse struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
