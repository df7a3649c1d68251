package schema

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// yamlLinePattern extracts the line number yaml.v3 embeds in its error text.
var yamlLinePattern = regexp.MustCompile(`(?s)^yaml: line (\d+): (.*)$`)

// Parse decodes raw YAML into a Document.
//
// A syntax failure returns a *ParseError and no issues. Structural
// problems that survive parsing (wrong scalar type for a field, a
// non-mapping root) are reported as Issues with field paths so the
// caller can show them alongside semantic findings; the returned
// document is nil whenever those issues contain errors.
func Parse(raw []byte) (*Document, Issues, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return nil, nil, toParseError(err)
	}

	if root.Kind == 0 || len(root.Content) == 0 {
		return nil, nil, &ParseError{Message: "empty document"}
	}

	top := root.Content[0]
	if top.Kind != yaml.MappingNode {
		return nil, Issues{{
			Path:     "document",
			Message:  "document root must be a mapping",
			Severity: SeverityError,
		}}, nil
	}

	d := &Document{}
	var issues Issues

	for i := 0; i+1 < len(top.Content); i += 2 {
		keyNode := top.Content[i]
		valNode := top.Content[i+1]
		key := keyNode.Value

		switch key {
		case "version":
			decodeField(valNode, &d.Version, "version", "must be a positive integer", &issues)
		case "kind":
			decodeField(valNode, &d.Kind, "kind", "must be a string", &issues)
		case "slug":
			decodeField(valNode, &d.Slug, "slug", "must be a string", &issues)
		case "title":
			decodeField(valNode, &d.Title, "title", "must be a string", &issues)
		case "owner":
			decodeField(valNode, &d.Owner, "owner", "must be a string", &issues)
		case "view_type":
			decodeField(valNode, &d.ViewType, "view_type", "must be a string", &issues)
		case "description":
			decodeField(valNode, &d.Description, "description", "must be a string", &issues)
		case "tags":
			decodeField(valNode, &d.Tags, "tags", "must be a list of strings", &issues)
		case "queries":
			decodeSequence(valNode, "queries", &issues, func(j int, n *yaml.Node) {
				var q QueryDef
				if decodeElem(n, &q, fmt.Sprintf("queries[%d]", j), &issues) {
					d.Queries = append(d.Queries, q)
				}
			})
		case "layout":
			decodeSequence(valNode, "layout", &issues, func(j int, n *yaml.Node) {
				var item LayoutItem
				if decodeElem(n, &item, fmt.Sprintf("layout[%d]", j), &issues) {
					d.Layout = append(d.Layout, item)
				}
			})
		default:
			// Unknown top-level keys are tolerated for forward
			// compatibility; the schema owns only the keys above.
		}
	}

	if issues.HasErrors() {
		return nil, issues, nil
	}
	return d, issues, nil
}

// decodeField decodes a scalar-ish node into dst, recording an issue at
// path on failure.
func decodeField(n *yaml.Node, dst any, path, want string, issues *Issues) {
	if err := n.Decode(dst); err != nil {
		*issues = append(*issues, Issue{
			Path:     path,
			Message:  fmt.Sprintf("%s (line %d)", want, n.Line),
			Severity: SeverityError,
		})
	}
}

// decodeSequence iterates a sequence node, recording an issue if the node
// is not a sequence at all.
func decodeSequence(n *yaml.Node, path string, issues *Issues, fn func(int, *yaml.Node)) {
	if n.Kind != yaml.SequenceNode {
		*issues = append(*issues, Issue{
			Path:     path,
			Message:  fmt.Sprintf("must be a list (line %d)", n.Line),
			Severity: SeverityError,
		})
		return
	}
	for j, elem := range n.Content {
		fn(j, elem)
	}
}

// decodeElem decodes one sequence element, recording an issue on failure.
// Returns true if the element decoded cleanly.
func decodeElem(n *yaml.Node, dst any, path string, issues *Issues) bool {
	if err := n.Decode(dst); err != nil {
		msg := err.Error()
		if te, ok := err.(*yaml.TypeError); ok && len(te.Errors) > 0 {
			msg = strings.Join(te.Errors, "; ")
		}
		*issues = append(*issues, Issue{
			Path:     path,
			Message:  msg,
			Severity: SeverityError,
		})
		return false
	}
	return true
}

// toParseError converts a yaml.v3 error into a ParseError, pulling the
// line number out of the message when present. yaml.v3 does not report
// columns for syntax errors, so Column is zero unless known.
func toParseError(err error) *ParseError {
	msg := err.Error()
	if m := yamlLinePattern.FindStringSubmatch(msg); m != nil {
		line := 0
		_, _ = fmt.Sscanf(m[1], "%d", &line)
		return &ParseError{Line: line, Message: m[2]}
	}
	return &ParseError{Message: strings.TrimPrefix(msg, "yaml: ")}
}

// Marshal serializes a document back to YAML. Validate(Marshal(d))
// round-trips to a document equal to d for any valid d.
func Marshal(d *Document) ([]byte, error) {
	return yaml.Marshal(d)
}
