package commands

import (
	"fmt"

	"github.com/peterhq/peter/internal/cli/output"
	"github.com/peterhq/peter/pkg/schema"
)

// issueReport is the JSON shape of per-file validation results.
type issueReport struct {
	File   string        `json:"file"`
	Valid  bool          `json:"valid"`
	Issues []issueRecord `json:"issues,omitempty"`
}

type issueRecord struct {
	Path     string `json:"path"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

func toIssueReport(file string, issues schema.Issues) issueReport {
	rep := issueReport{File: file, Valid: !issues.HasErrors()}
	for _, is := range issues {
		rep.Issues = append(rep.Issues, issueRecord{
			Path:     is.Path,
			Severity: is.Severity.String(),
			Message:  is.Message,
		})
	}
	return rep
}

// renderIssues prints one file's issues in text form and reports
// whether any errors were present.
func renderIssues(r *output.Renderer, file string, issues schema.Issues) bool {
	if len(issues) == 0 {
		r.Success(file)
		return false
	}

	r.Println(r.Styles().Path.Render(file))
	for _, is := range issues {
		sev := severityLabel(r, is.Severity)
		r.Printf("  %s  %s  %s\n", sev, r.Styles().Bold.Render(is.Path), is.Message)
	}

	errs, warns := len(issues.Errors()), len(issues.Warnings())
	parts := ""
	if errs > 0 {
		parts = fmt.Sprintf("%d errors", errs)
	}
	if warns > 0 {
		if parts != "" {
			parts += ", "
		}
		parts += fmt.Sprintf("%d warnings", warns)
	}
	r.Printf("  %s\n", r.Styles().Muted.Render(parts))
	return issues.HasErrors()
}

func severityLabel(r *output.Renderer, sev schema.Severity) string {
	switch sev {
	case schema.SeverityError:
		return r.Styles().Error.Render("error  ")
	case schema.SeverityWarning:
		return r.Styles().Warning.Render("warning")
	default:
		return r.Styles().Muted.Render("unknown")
	}
}
