package dto

// Response represents a standard API response
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
}

// ErrorInfo represents error details
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data any) Response {
	return Response{
		Success: true,
		Data:    data,
	}
}

// NewErrorResponse creates an error response
func NewErrorResponse(code, message string) Response {
	return Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	}
}

// OrderURI binds the order id path parameter
type OrderURI struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// ReturnRequestURI binds the order and return request path parameters
type ReturnRequestURI struct {
	ID        string `uri:"id" binding:"required,uuid"`
	RequestID string `uri:"rid" binding:"required,uuid"`
}

// ReturnItemURI binds the order, return request and return item path parameters
type ReturnItemURI struct {
	ID        string `uri:"id" binding:"required,uuid"`
	RequestID string `uri:"rid" binding:"required,uuid"`
	ItemID    string `uri:"item_id" binding:"required,uuid"`
}

// UploadResponse is returned after a transfer image has been staged
type UploadResponse struct {
	Key string `json:"key"`
}

// HealthResponse reports process and dependency health
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
}
