// Package dto provides Data Transfer Objects for API requests/responses.
package dto

// Response is the uniform success envelope.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// OK wraps data in the success envelope.
func OK(data any) Response {
	return Response{Success: true, Data: data}
}

// OKMessage wraps a data-free success.
func OKMessage(message string) Response {
	return Response{Success: true, Message: message}
}

// ListData carries paginated list results inside the envelope.
type ListData struct {
	Items      any   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// Pagination contains common list query parameters.
type Pagination struct {
	Limit  int `form:"limit" binding:"omitempty,min=1,max=200"`
	Offset int `form:"offset" binding:"omitempty,min=0"`
}

// Defaults fills unset pagination values.
func (p *Pagination) Defaults() {
	if p.Limit == 0 {
		p.Limit = 50
	}
}
