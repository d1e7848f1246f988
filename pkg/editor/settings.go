package editor

import (
	"fmt"

	"github.com/aretw0/formflow/internal/validator"
	"github.com/aretw0/formflow/pkg/domain"
)

// UpdateSettings merges patch into the form settings.
// The form id cannot be changed and an explicit start must name an existing question.
func (e *Editor) UpdateSettings(f *domain.Form, patch map[string]any) (domain.Settings, error) {
	next := f.Settings
	if err := decodePatch(patch, &next); err != nil {
		return domain.Settings{}, err
	}
	next.FormID = f.ID
	if err := validator.ValidateSettings(next); err != nil {
		return domain.Settings{}, err
	}
	if next.StartNodeID != "" {
		if _, ok := f.NodeByID(next.StartNodeID); !ok {
			return domain.Settings{}, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, next.StartNodeID)
		}
	}

	f.Settings = next
	if next.FormName != "" {
		f.Name = next.FormName
	}
	e.touch(f)
	return next, nil
}
