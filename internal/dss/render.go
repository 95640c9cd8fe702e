package dss

import (
	"log/slog"
	"strings"
)

// Template file names.
const (
	FourSectorTemplate  = "standard.txt"
	ThreeSectorTemplate = "stand.txt"
)

// Variant selects how the Renderer picks a template.
type Variant string

const (
	// VariantDual picks the four- or three-sector template per group.
	VariantDual Variant = "dual"
	// VariantSingle always uses one template.
	VariantSingle Variant = "single"
)

// TemplateSet maps a template name to its raw text.
type TemplateSet map[string]string

// Names lists the available template names.
func (ts TemplateSet) Names() []string {
	names := make([]string, 0, len(ts))
	for n := range ts {
		names = append(names, n)
	}
	return sortedCopy(names)
}

// RenderedOutput is the final text of one group together with the metadata
// the packaging layer reports.
type RenderedOutput struct {
	VariableName string `json:"variable_name"`
	TemplateUsed string `json:"template_used"`
	OutputFile   string `json:"output_file"`
	Replacements int    `json:"replacements"`
	Content      string `json:"content"`
}

// OutputFileName is the file a rendered group is written to.
func OutputFileName(name string) string {
	return name + "_output.txt"
}

// Renderer substitutes placeholder maps into templates.
type Renderer struct {
	variant   Variant
	single    string
	templates TemplateSet
	logger    *slog.Logger
}

func NewRenderer(templates TemplateSet, opts Options, logger *slog.Logger) *Renderer {
	opts = opts.WithDefaults()
	return &Renderer{
		variant:   opts.Variant,
		single:    opts.SingleTemplate,
		templates: templates,
		logger:    componentLogger(logger, "renderer"),
	}
}

// SelectTemplate returns the template name m should be rendered with.
func (r *Renderer) SelectTemplate(m *PlaceholderMap) string {
	if r.variant == VariantSingle {
		return r.single
	}
	for _, t := range FourSectorTokens {
		if v, ok := m.Get(t); ok && !v.IsNull() {
			return FourSectorTemplate
		}
	}
	return ThreeSectorTemplate
}

// Render selects a template and substitutes every token of m into it.
func (r *Renderer) Render(m *PlaceholderMap) (*RenderedOutput, error) {
	name := r.SelectTemplate(m)
	body, ok := r.templates[name]
	if !ok {
		return nil, &TemplateMissingError{Group: m.Name, Template: name}
	}

	text, n := Substitute(body, m)
	r.logger.Info("template rendered",
		slog.String("variable", m.Name),
		slog.String("template", name),
		slog.Int("replacements", n))

	return &RenderedOutput{
		VariableName: m.Name,
		TemplateUsed: name,
		OutputFile:   OutputFileName(m.Name),
		Replacements: n,
		Content:      text,
	}, nil
}

// Substitute replaces tokens longest first into one accumulating text, so a
// token that is a substring of a longer one never matches inside it. It
// returns the text and the number of occurrences replaced. Null values
// render as "".
func Substitute(body string, m *PlaceholderMap) (string, int) {
	total := 0
	for _, token := range m.Tokens() {
		if token == "" {
			continue
		}
		n := strings.Count(body, token)
		if n == 0 {
			continue
		}
		v, _ := m.Get(token)
		body = strings.ReplaceAll(body, token, v.String())
		total += n
	}
	return body, total
}
