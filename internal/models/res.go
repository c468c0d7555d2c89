package models

// ApiResponse is the envelope shared by every endpoint.
type ApiResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Errors  []string    `json:"errors,omitempty"`
}

// Page is the data payload of paginated listings.
type Page struct {
	TotalPages int   `json:"totalPages"`
	Total      int64 `json:"total"`
}

func SuccessResponse(data interface{}, message string) ApiResponse {
	return ApiResponse{
		Success: true,
		Data:    data,
		Message: message,
	}
}

func ErrorResponse(message string, errs ...string) ApiResponse {
	return ApiResponse{
		Success: false,
		Message: message,
		Errors:  errs,
	}
}

// TotalPages never reports fewer than one page, even for an empty listing.
func TotalPages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 1
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
