package domain

// ActionRequest represents something the engine asks the host to present.
type ActionRequest struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Standard Action Types
const (
	// ActionRenderContent requests the host to display content to the respondent.
	// Payload: string (the interpolated question)
	ActionRenderContent = "RENDER_CONTENT"

	// ActionRequestInput requests the host to collect an answer.
	// Payload: InputRequest
	ActionRequestInput = "REQUEST_INPUT"

	// ActionSystemMessage represents a meta-message from the engine (completion, status).
	// Payload: string (the message)
	ActionSystemMessage = "SYSTEM_MESSAGE"
)

// InputRequest describes the answer the current question expects.
type InputRequest struct {
	NodeID     string       `json:"node_id"`
	Variable   string       `json:"variable"`
	Type       QuestionType `json:"type"`
	Required   bool         `json:"required"`
	HelpText   string       `json:"help_text,omitempty"`
	Options    []string     `json:"options,omitempty"`
	MediaTypes []MediaType  `json:"media_types,omitempty"`
	ImageURL   string       `json:"image_url,omitempty"`
	VideoURL   string       `json:"video_url,omitempty"`
	PDFURL     string       `json:"pdf_url,omitempty"`
}

// NewInputRequest builds the input descriptor for a node.
func NewInputRequest(n Node) InputRequest {
	return InputRequest{
		NodeID:     n.ID,
		Variable:   n.Data.VariableName,
		Type:       n.Data.Type,
		Required:   n.Data.Required,
		HelpText:   n.Data.HelpText,
		Options:    append([]string(nil), n.Data.Options...),
		MediaTypes: append([]MediaType(nil), n.Data.MediaTypes...),
		ImageURL:   n.Data.ImageURL,
		VideoURL:   n.Data.VideoURL,
		PDFURL:     n.Data.PDFURL,
	}
}
