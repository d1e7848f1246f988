package domain

// QuestionType is the declared answer type of a question node.
type QuestionType string

const (
	QuestionText           QuestionType = "text"
	QuestionLongText       QuestionType = "longText"
	QuestionMultipleChoice QuestionType = "multipleChoice"
	QuestionDropdown       QuestionType = "dropdown"
	QuestionBoolean        QuestionType = "boolean"
	QuestionDate           QuestionType = "date"
	QuestionRating         QuestionType = "rating"
	QuestionSlider         QuestionType = "slider"
	QuestionMedia          QuestionType = "media"
)

// QuestionTypes lists every supported question type in display order.
var QuestionTypes = []QuestionType{
	QuestionText,
	QuestionLongText,
	QuestionMultipleChoice,
	QuestionDropdown,
	QuestionBoolean,
	QuestionDate,
	QuestionRating,
	QuestionSlider,
	QuestionMedia,
}

// Valid reports whether t is one of the supported question types.
func (t QuestionType) Valid() bool {
	for _, known := range QuestionTypes {
		if t == known {
			return true
		}
	}
	return false
}

// HasOptions reports whether questions of this type carry a choice list.
func (t QuestionType) HasOptions() bool {
	return t == QuestionMultipleChoice || t == QuestionDropdown
}

// MediaType is an attachment kind accepted by media questions.
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
	MediaPDF   MediaType = "pdf"
)

// Position is the node's location on the editor canvas.
// It is presentation-only and never affects evaluation.
type Position struct {
	X float64 `json:"x" yaml:"x" mapstructure:"x" validate:"min=-10000,max=10000"`
	Y float64 `json:"y" yaml:"y" mapstructure:"y" validate:"min=-10000,max=10000"`
}

// NodeData holds the editable fields of a question.
type NodeData struct {
	// Question is a template; [variableName] placeholders are replaced with answers at render time.
	Question     string       `json:"question" yaml:"question" mapstructure:"question" validate:"required,max=1000"`
	Type         QuestionType `json:"type" yaml:"type" mapstructure:"type" validate:"required,questiontype"`
	Required     bool         `json:"required" yaml:"required" mapstructure:"required"`
	VariableName string       `json:"variableName" yaml:"variable" mapstructure:"variableName" validate:"required,max=50,varname"`
	HelpText     string       `json:"helpText,omitempty" yaml:"help,omitempty" mapstructure:"helpText" validate:"max=500"`
	Options      []string     `json:"options,omitempty" yaml:"options,omitempty" mapstructure:"options" validate:"omitempty,min=1,max=50,dive,max=200"`
	ImageURL     string       `json:"imageUrl,omitempty" yaml:"image_url,omitempty" mapstructure:"imageUrl" validate:"omitempty,url,max=1000"`
	VideoURL     string       `json:"videoUrl,omitempty" yaml:"video_url,omitempty" mapstructure:"videoUrl" validate:"omitempty,url,max=1000"`
	PDFURL       string       `json:"pdfUrl,omitempty" yaml:"pdf_url,omitempty" mapstructure:"pdfUrl" validate:"omitempty,url,max=1000"`
	MediaTypes   []MediaType  `json:"mediaTypes,omitempty" yaml:"media_types,omitempty" mapstructure:"mediaTypes" validate:"omitempty,min=1,dive,oneof=image video pdf"`
}

// Node is a single question in the form graph.
type Node struct {
	ID       string   `json:"id" yaml:"id" mapstructure:"id"`
	Position Position `json:"position" yaml:"position" mapstructure:"position"`
	Data     NodeData `json:"data" yaml:"data" mapstructure:"data"`
}

// Variable is a shorthand for the node's answer key.
func (n Node) Variable() string {
	return n.Data.VariableName
}

// Type is a shorthand for the node's declared question type.
func (n Node) Type() QuestionType {
	return n.Data.Type
}

// Clone returns a deep copy of the node.
func (n Node) Clone() Node {
	c := n
	if n.Data.Options != nil {
		c.Data.Options = append([]string(nil), n.Data.Options...)
	}
	if n.Data.MediaTypes != nil {
		c.Data.MediaTypes = append([]MediaType(nil), n.Data.MediaTypes...)
	}
	return c
}
