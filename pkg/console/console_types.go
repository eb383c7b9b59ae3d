// Package console renders operator-facing output for the combiner: tables,
// trees, and the interactive prompts the Resolution Engine needs when a
// choice can't be made automatically.
package console

// SourcePosition locates a byte position inside one of the JSON files being
// ingested, used to annotate ParseError/MalformedEncoding warnings.
type SourcePosition struct {
	File   string
	Line   int
	Column int
}

// Diagnostic is a structured warning or error tied to a source file,
// surfaced by the JSON Walker and binders when SHOW_WARNINGS is set.
type Diagnostic struct {
	Position SourcePosition
	Severity string // "error", "warning", "info"
	Message  string
	Hint     string
}

// TableConfig configures a simple text table, used to show per-pack
// completeness stamps (comp_stamp) during CHOOSE/MERGE prompts.
type TableConfig struct {
	Headers   []string
	Rows      [][]string
	Title     string
	ShowTotal bool
	TotalRow  []string
}

// TreeNode is a node in a hierarchical tree, used to render an Entity's
// Form/ResolverEntry structure for operator review.
type TreeNode struct {
	Value    string
	Children []TreeNode
}

// SelectOption is one option in a Chooser prompt, e.g. one pack holding an
// entity during a CHOOSE/MERGE pick.
type SelectOption struct {
	Label string
	Value string
}

// FormField is a generic prompt field configuration.
type FormField struct {
	Type        string // "input", "password", "confirm", "select"
	Title       string
	Description string
	Placeholder string
	Value       any
	Options     []SelectOption
	Validate    func(string) error
}

// ListItem is an item in an interactive list (e.g. the residual CHOOSE-mode
// prompt listing every pack still holding an entity).
type ListItem struct {
	title       string
	description string
	value       string
}

// NewListItem creates a new list item with title, description, and value.
func NewListItem(title, description, value string) ListItem {
	return ListItem{title: title, description: description, value: value}
}

// Title returns the item's title.
func (i ListItem) Title() string { return i.title }

// Description returns the item's description.
func (i ListItem) Description() string { return i.description }

// FilterValue returns the value used for filtering.
func (i ListItem) FilterValue() string { return i.title }

// Value returns the underlying option value.
func (i ListItem) Value() string { return i.value }
