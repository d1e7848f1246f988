package loam

// FormMetadata is the frontmatter of a form document.
// It uses "mapstructure" tags to match the short YAML keys authors write.
type FormMetadata struct {
	ID        string         `json:"id" mapstructure:"id"`
	Name      string         `json:"name" mapstructure:"name"`
	Start     string         `json:"start" mapstructure:"start"`
	Published bool           `json:"published" mapstructure:"published"`
	Color     string         `json:"color" mapstructure:"color"`
	Nodes     []NodeMetadata `json:"nodes" mapstructure:"nodes"`
	Edges     []EdgeMetadata `json:"edges" mapstructure:"edges"`
}

// NodeMetadata is one question.
type NodeMetadata struct {
	ID       string   `json:"id" mapstructure:"id"`
	Question string   `json:"question" mapstructure:"question"`
	Type     string   `json:"type" mapstructure:"type"`
	Variable string   `json:"variable" mapstructure:"variable"`
	Required bool     `json:"required" mapstructure:"required"`
	Help     string   `json:"help" mapstructure:"help"`
	Options  []string `json:"options" mapstructure:"options"`
	Image    string   `json:"image" mapstructure:"image"`
	Video    string   `json:"video" mapstructure:"video"`
	PDF      string   `json:"pdf" mapstructure:"pdf"`
	Media    []string `json:"media" mapstructure:"media"`
	X        float64  `json:"x" mapstructure:"x"`
	Y        float64  `json:"y" mapstructure:"y"`

	// To is shorthand for an unconditional edge to another node.
	To string `json:"to" mapstructure:"to"`
}

// EdgeMetadata is one transition.
type EdgeMetadata struct {
	ID         string              `json:"id" mapstructure:"id"`
	From       string              `json:"from" mapstructure:"from"`
	To         string              `json:"to" mapstructure:"to"`
	Match      string              `json:"match" mapstructure:"match"`
	When       []ConditionMetadata `json:"when" mapstructure:"when"`
	Expression string              `json:"expression" mapstructure:"expression"`
}

// ConditionMetadata is one comparison. Ref, when set, compares against
// another variable's answer instead of Value.
type ConditionMetadata struct {
	Var   string `json:"var" mapstructure:"var"`
	Op    string `json:"op" mapstructure:"op"`
	Value any    `json:"value" mapstructure:"value"`
	Ref   string `json:"ref" mapstructure:"ref"`
}
