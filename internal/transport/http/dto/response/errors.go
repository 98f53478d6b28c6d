package response

import "net/http"

var (
	ErrInternal    = ErrorResponse{Detail: http.StatusText(http.StatusInternalServerError)}
	ErrInvalidBody = ErrorResponse{Detail: "Invalid request body"}
)
