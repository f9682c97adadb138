// Package response contains the JSON bodies written back to API clients.
package response

// A struct type that represents a message with a status and body.
// Message has the following properties:
// - Status: The status of the message.
// - Body: The body of the message.
type Message struct {
	Status string
	Body   string
}

// Detail is the body of a 404, 401 or 500 response.
type Detail struct {
	Detail string `json:"detail"`
}

// FieldError describes one rejected input field.
// Loc is the path to the field, e.g. ["body", "title"] or ["path", "id"].
type FieldError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// ValidationDetail is the body of a 422 response.
type ValidationDetail struct {
	Detail []FieldError `json:"detail"`
}

// Health is the body of the liveness endpoint.
type Health struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Token is the body of a successful login.
type Token struct {
	Token string `json:"token"`
}
