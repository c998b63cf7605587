package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/arthur-debert/nix-installer/pkg/core"
	"github.com/arthur-debert/nix-installer/pkg/logging"
	"github.com/arthur-debert/nix-installer/pkg/steps"
	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

// Renderer writes installer results in one format.
type Renderer struct {
	writer io.Writer
	format Format
	styles map[string]lipgloss.Style
}

// NewRenderer creates a Renderer writing to w. FormatAuto is resolved
// against w when it is a file, and falls back to plain text otherwise.
func NewRenderer(w io.Writer, format Format) *Renderer {
	if format == FormatAuto {
		format = FormatText
		if f, ok := w.(*os.File); ok {
			format = DetectFormat(f)
		}
	}
	logger := logging.GetLogger("output.renderer")
	logger.Debug().
		Str("format", format.String()).
		Msg("Creating renderer")

	return &Renderer{writer: w, format: format, styles: newStyles(w)}
}

// Format returns the resolved output format.
func (r *Renderer) Format() Format {
	return r.format
}

func (r *Renderer) style(name, text string) string {
	if r.format != FormatTerminal {
		return text
	}
	return r.styles[name].Render(text)
}

// resultReport is the YAML shape of a core.Result.
type resultReport struct {
	Mode    string              `yaml:"mode"`
	Steps   int                 `yaml:"steps"`
	Plans   []steps.Plan        `yaml:"plans,omitempty"`
	NixConf *core.NixConfChange `yaml:"nixconf,omitempty"`
}

// RenderResult writes the outcome of an install, uninstall or plan.
func (r *Renderer) RenderResult(result *core.Result) error {
	if r.format == FormatYAML {
		return r.writeYAML(resultReport{
			Mode:    result.Mode.String(),
			Steps:   result.Steps,
			Plans:   result.Plans,
			NixConf: result.NixConf,
		})
	}

	var b strings.Builder
	if result.Mode.IsDry() {
		r.writePlans(&b, result)
	} else {
		fmt.Fprintf(&b, "%s %d steps applied (%s)\n",
			r.style(StyleSuccess, "Done:"), result.Steps, result.Mode)
	}
	if result.NixConf != nil {
		fmt.Fprintf(&b, "%s %s\n", r.style(StyleStep, "nix.conf"), r.describeNixConf(result.NixConf))
	}

	_, err := io.WriteString(r.writer, b.String())
	return err
}

func (r *Renderer) writePlans(b *strings.Builder, result *core.Result) {
	fmt.Fprintln(b, r.style(StyleHeader, fmt.Sprintf("Plan (%s)", result.Mode)))

	pending := 0
	for _, p := range result.Plans {
		if p.IsNoop() {
			fmt.Fprintf(b, "  %s %s\n", r.style(StyleNoop, "="), r.style(StyleNoop, p.Step+" (up to date)"))
			continue
		}
		pending++
		fmt.Fprintf(b, "  %s %s\n", r.style(StyleUpdate, "~"), r.style(StyleStep, p.Step))
		for _, c := range p.Pending() {
			fmt.Fprintf(b, "      %s %s\n", r.actionMarker(c.Action), c.String())
		}
	}

	if pending == 0 {
		fmt.Fprintln(b, r.style(StyleSuccess, "Nothing to do."))
		return
	}
	fmt.Fprintf(b, "%d of %d steps have pending changes.\n", pending, len(result.Plans))
}

func (r *Renderer) actionMarker(a steps.Action) string {
	switch a {
	case steps.ActionCreate:
		return r.style(StyleCreate, "+")
	case steps.ActionRemove:
		return r.style(StyleRemove, "-")
	default:
		return r.style(StyleUpdate, "~")
	}
}

func (r *Renderer) describeNixConf(c *core.NixConfChange) string {
	switch {
	case !c.Changed:
		return c.Path + " is up to date"
	case c.Written && c.Created:
		return c.Path + " created"
	case c.Written:
		return c.Path + " updated"
	case c.Created:
		return c.Path + " would be created"
	default:
		return c.Path + " would be updated"
	}
}

// RenderSettings writes nix.conf settings, one per line.
func (r *Renderer) RenderSettings(settings []core.Setting) error {
	if r.format == FormatYAML {
		if settings == nil {
			settings = []core.Setting{}
		}
		return r.writeYAML(settings)
	}

	var b strings.Builder
	for _, s := range settings {
		line := s.Key + " = " + s.Value
		if s.Value == "" {
			line = s.Key + " ="
		}
		if s.Comment != "" {
			line += "  " + r.style(StyleMuted, "# "+strings.ReplaceAll(s.Comment, "\n", " "))
		}
		fmt.Fprintln(&b, line)
	}
	_, err := io.WriteString(r.writer, b.String())
	return err
}

// RenderError renders an error message with appropriate styling
func (r *Renderer) RenderError(err error) error {
	_, writeErr := fmt.Fprintf(r.writer, "%s %v\n", r.style(StyleError, "Error:"), err)
	return writeErr
}

// RenderMessage renders a simple message with optional styling
func (r *Renderer) RenderMessage(style, message string) error {
	_, err := fmt.Fprintln(r.writer, r.style(style, message))
	return err
}

func (r *Renderer) writeYAML(v interface{}) error {
	enc := yaml.NewEncoder(r.writer)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	return enc.Close()
}
