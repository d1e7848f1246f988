package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/formflow/internal/validator"
	"github.com/aretw0/formflow/pkg/ports"
)

// ErrInvalidForms is returned by LintForms when any form has error-level findings.
var ErrInvalidForms = errors.New("some forms are invalid")

// LintForms lints the given forms, or every form when ids is empty, and
// writes one report per form to w.
func LintForms(ctx context.Context, forms ports.FormLoader, ids []string, w io.Writer) error {
	if len(ids) == 0 {
		var err error
		if ids, err = forms.ListForms(ctx); err != nil {
			return fmt.Errorf("failed to list forms: %w", err)
		}
		if len(ids) == 0 {
			fmt.Fprintln(w, "No forms found.")
			return nil
		}
	}

	invalid := 0
	for _, id := range ids {
		form, err := forms.GetForm(ctx, id)
		if err != nil {
			return err
		}
		report := validator.Lint(form)
		errs, warns := report.Errors(), report.Warnings()
		switch {
		case len(errs) > 0:
			invalid++
			fmt.Fprintf(w, "%s: %d errors, %d warnings\n", id, len(errs), len(warns))
		case len(warns) > 0:
			fmt.Fprintf(w, "%s: ok, %d warnings\n", id, len(warns))
		default:
			fmt.Fprintf(w, "%s: ok\n", id)
		}
		for _, issue := range report.Issues {
			fmt.Fprintf(w, "  %s\n", issue)
		}
	}
	if invalid > 0 {
		return fmt.Errorf("%w: %d of %d", ErrInvalidForms, invalid, len(ids))
	}
	return nil
}
