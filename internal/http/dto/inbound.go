package dto

// InboundEmailRequest is the multipart form posted by the inbound email
// provider. The plain-text body arrives in "text".
type InboundEmailRequest struct {
	From    string `form:"from" binding:"required"`
	Subject string `form:"subject"`
	Text    string `form:"text"`
}

type InboundEmailResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
