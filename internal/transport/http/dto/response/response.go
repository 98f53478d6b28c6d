package response

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

type Message struct {
	Message string `json:"message"`
}

// Detail is a success body keyed like an error, as coalition deletion answers.
type Detail struct {
	Detail string `json:"detail"`
}

type Status struct {
	Status string `json:"status"`
}

type DBStatus struct {
	Status          string `json:"status"`
	PostgresVersion string `json:"postgres_version,omitempty"`
	Error           string `json:"error,omitempty"`
}
