package console

import (
	"fmt"
	"os"
	"sort"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/packforge/combiner/internal/tty"
	"github.com/packforge/combiner/pkg/resolve"
)

// IsAccessibleMode reports whether interactive prompts should fall back to
// huh's plain accessible renderer (screen readers, dumb terminals, CI logs)
// instead of the full TUI. Gated by the ACCESSIBLE environment variable.
func IsAccessibleMode() bool {
	return os.Getenv("ACCESSIBLE") != ""
}

var (
	promptTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	noticeStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("243")).Italic(true)
)

// InteractiveChooser implements resolve.Chooser with a huh select prompt,
// the combiner's only interactive decision point. It refuses to prompt when
// stderr or stdin isn't a terminal so batch/CI runs fail fast instead of
// hanging forever on stdin.
type InteractiveChooser struct{}

// NewInteractiveChooser returns a Chooser backed by huh forms.
func NewInteractiveChooser() *InteractiveChooser {
	return &InteractiveChooser{}
}

// Pick prompts the operator to choose which pack should win for entityName,
// among the packs listed in holder. Merge and Choose only call Pick once a
// holder has more than one candidate, so names always has at least two
// entries here.
func (c *InteractiveChooser) Pick(entityName string, holder resolve.Holder) (string, error) {
	if !tty.IsStderrTerminal() || !tty.IsStdinTerminal() {
		return "", fmt.Errorf("cannot resolve %s: multiple packs conflict and no terminal is attached for an interactive choice", entityName)
	}

	names := make([]string, 0, len(holder))
	for n := range holder {
		names = append(names, n)
	}
	sort.Strings(names)

	opts := make([]huh.Option[string], 0, len(names))
	for _, n := range names {
		opts = append(opts, huh.NewOption(n, n))
	}

	picked := names[0]
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(promptTitleStyle.Render(fmt.Sprintf("Multiple packs provide %s", entityName))).
				Description("Pick which pack's graphics and conflicting fields should win.").
				Options(opts...).
				Value(&picked),
		),
	).WithAccessible(IsAccessibleMode())

	if err := form.Run(); err != nil {
		return "", fmt.Errorf("prompting for %s: %w", entityName, err)
	}
	return picked, nil
}

// Notify surfaces an informational message to the operator without
// interrupting with a prompt (e.g. a pseudoform exclusion or a fallback
// decision taken automatically).
func (c *InteractiveChooser) Notify(message string) {
	fmt.Fprintln(os.Stderr, noticeStyle.Render(message))
}

// BatchChooser implements resolve.Chooser for non-interactive runs (--yes,
// CI): it never prompts, failing a residual conflict instead of guessing.
type BatchChooser struct{}

// NewBatchChooser returns a Chooser that errors on every Pick call.
func NewBatchChooser() *BatchChooser {
	return &BatchChooser{}
}

func (c *BatchChooser) Pick(entityName string, holder resolve.Holder) (string, error) {
	return "", fmt.Errorf("cannot resolve %s: %d packs conflict and --yes forbids prompting", entityName, len(holder))
}

func (c *BatchChooser) Notify(message string) {
	fmt.Fprintln(os.Stderr, noticeStyle.Render(message))
}
