package domain

import "time"

// Settings are form-level options persisted alongside the graph.
type Settings struct {
	FormID       string `json:"formId" yaml:"form_id" mapstructure:"formId"`
	FormName     string `json:"formName" yaml:"name" mapstructure:"formName" validate:"max=200"`
	StartNodeID  string `json:"startNodeId" yaml:"start,omitempty" mapstructure:"startNodeId"`
	IsPublished  bool   `json:"isPublished" yaml:"published,omitempty" mapstructure:"isPublished"`
	PrimaryColor string `json:"primaryColor,omitempty" yaml:"primary_color,omitempty" mapstructure:"primaryColor"`
	ShowBranding bool   `json:"showBranding" yaml:"show_branding,omitempty" mapstructure:"showBranding"`
}

// Form is the full graph of one form: its questions, transitions and settings.
type Form struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Nodes     []Node    `json:"nodes" yaml:"nodes"`
	Edges     []Edge    `json:"edges" yaml:"edges"`
	Settings  Settings  `json:"settings" yaml:"settings"`
	CreatedAt time.Time `json:"createdAt" yaml:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"updated_at,omitempty"`
}

// NodeByID returns the node with the given id.
func (f *Form) NodeByID(id string) (*Node, bool) {
	for i := range f.Nodes {
		if f.Nodes[i].ID == id {
			return &f.Nodes[i], true
		}
	}
	return nil, false
}

// NodeByVariable returns the node whose variable name matches.
func (f *Form) NodeByVariable(name string) (*Node, bool) {
	return FindNodeByVariable(f.Nodes, name)
}

// EdgeByID returns the edge with the given id.
func (f *Form) EdgeByID(id string) (*Edge, bool) {
	for i := range f.Edges {
		if f.Edges[i].ID == id {
			return &f.Edges[i], true
		}
	}
	return nil, false
}

// Clone returns a deep copy of the form so callers can mutate it freely.
func (f *Form) Clone() *Form {
	if f == nil {
		return nil
	}
	c := *f
	c.Nodes = make([]Node, len(f.Nodes))
	for i, n := range f.Nodes {
		c.Nodes[i] = n.Clone()
	}
	c.Edges = make([]Edge, len(f.Edges))
	for i, e := range f.Edges {
		c.Edges[i] = e.Clone()
	}
	return &c
}

// FindNodeByVariable scans nodes for the first one using the variable name.
func FindNodeByVariable(nodes []Node, name string) (*Node, bool) {
	for i := range nodes {
		if nodes[i].Data.VariableName == name {
			return &nodes[i], true
		}
	}
	return nil, false
}

// Response is the answer set of one completed session.
type Response struct {
	ID          string    `json:"id"`
	FormID      string    `json:"formId"`
	SessionID   string    `json:"sessionId"`
	Answers     Answers   `json:"answers"`
	CompletedAt time.Time `json:"completedAt"`
}
