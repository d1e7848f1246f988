package editor

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/formflow/internal/logging"
	"github.com/aretw0/formflow/pkg/domain"
	"github.com/aretw0/formflow/pkg/flow"
)

// Defaults applied to a freshly created form.
const (
	DefaultFormName     = "My Conversational Form"
	DefaultPrimaryColor = "#3b82f6"
	DefaultQuestion     = "New Question"

	// NodeSpacing is the vertical gap between a new question and the lowest one.
	NodeSpacing = 150.0
	// DuplicateOffset shifts a copied question on both axes.
	DuplicateOffset = 50.0
)

// DefaultOptions seeds choice questions.
var DefaultOptions = []string{"Option 1", "Option 2"}

// Editor applies builder operations to forms.
type Editor struct {
	navigator *flow.Navigator
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string
}

// Option configures an Editor.
type Option func(*Editor)

// WithNavigator sets the navigator used by PreviewEdge.
func WithNavigator(n *flow.Navigator) Option {
	return func(e *Editor) {
		e.navigator = n
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Editor) {
		e.logger = logger
	}
}

// WithClock overrides time.Now, which also seeds generated variable names.
func WithClock(now func() time.Time) Option {
	return func(e *Editor) {
		e.now = now
	}
}

// WithIDGenerator overrides the node, edge and form id source.
func WithIDGenerator(fn func() string) Option {
	return func(e *Editor) {
		e.newID = fn
	}
}

// New creates an Editor.
func New(opts ...Option) *Editor {
	e := &Editor{
		logger: logging.NewNop(),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.navigator == nil {
		e.navigator = flow.NewNavigator(flow.WithLogger(e.logger))
	}
	return e
}

// NewForm returns a form seeded with a single name question.
// An empty id generates one.
func (e *Editor) NewForm(id string) *domain.Form {
	if id == "" {
		id = "form_" + e.token()
	}
	now := e.now().UTC()
	first := domain.Node{
		ID:       e.newID(),
		Position: domain.Position{X: 250, Y: 100},
		Data: domain.NodeData{
			Question:     "What's your name?",
			Type:         domain.QuestionText,
			Required:     true,
			VariableName: "user_name",
			HelpText:     "Please enter your full name",
		},
	}
	return &domain.Form{
		ID:    id,
		Name:  DefaultFormName,
		Nodes: []domain.Node{first},
		Edges: []domain.Edge{},
		Settings: domain.Settings{
			FormID:       id,
			FormName:     DefaultFormName,
			StartNodeID:  first.ID,
			PrimaryColor: DefaultPrimaryColor,
			ShowBranding: true,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// variableName follows the builder's question_<unix-ms>_<random> scheme.
func (e *Editor) variableName() string {
	return "question_" + strconv.FormatInt(e.now().UnixMilli(), 10) + "_" + e.token()
}

// token returns nine lowercase alphanumerics.
func (e *Editor) token() string {
	raw := strings.ReplaceAll(strings.ToLower(e.newID()), "-", "")
	if len(raw) < 9 {
		raw += strings.Repeat("0", 9-len(raw))
	}
	return raw[:9]
}

func (e *Editor) touch(f *domain.Form) {
	f.UpdatedAt = e.now().UTC()
}

// RecomputeStart sets the start question to the first node without incoming
// edges, falling back to the first node.
func RecomputeStart(f *domain.Form) {
	if len(f.Nodes) == 0 {
		f.Settings.StartNodeID = ""
		return
	}
	targeted := make(map[string]bool, len(f.Edges))
	for _, e := range f.Edges {
		targeted[e.Target] = true
	}
	for _, n := range f.Nodes {
		if !targeted[n.ID] {
			f.Settings.StartNodeID = n.ID
			return
		}
	}
	f.Settings.StartNodeID = f.Nodes[0].ID
}

// decodePatch merges patch into target. Keys follow the JSON field names;
// unknown keys are rejected and listed slices are replaced, not merged.
func decodePatch(patch map[string]any, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      target,
		TagName:     "mapstructure",
		ErrorUnused: true,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(patch); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidPatch, err)
	}
	return nil
}

func indexOfNode(f *domain.Form, id string) (int, error) {
	for i := range f.Nodes {
		if f.Nodes[i].ID == id {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, id)
}

func indexOfEdge(f *domain.Form, id string) (int, error) {
	for i := range f.Edges {
		if f.Edges[i].ID == id {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %s", domain.ErrEdgeNotFound, id)
}
