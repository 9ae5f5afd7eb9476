package api

// TextRequest is the JSON body accepted by the text analysis route.
type TextRequest struct {
	Text string `json:"text"`
}

// MessageResponse is returned by the root route.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse carries a failure message.
type ErrorResponse struct {
	Error string `json:"error"`
}
