// Package generate produces single-page app documents from task briefs via a
// chain of generative-model providers.
package generate

import (
	"context"
	"fmt"
	"html"
	"log"
	"strings"

	"github.com/briefpress/briefpress/internal/domain"
)

// Provider is a single generative-model backend.
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// Generator runs a fallback chain of providers. Each provider is attempted
// once, in order; the first success wins. When every provider fails the
// result is a deterministic placeholder document, never an error.
type Generator struct {
	providers []Provider
}

// New creates a Generator over the given providers in fallback order.
func New(providers ...Provider) *Generator {
	return &Generator{providers: providers}
}

// Generate produces the page document and README for a task. prior is the
// current document from a previous round, empty on round 1.
func (g *Generator) Generate(ctx context.Context, req *domain.TaskRequest, prior string) *domain.Artifact {
	prompt := BuildPrompt(req.Brief, req.Attachments, prior)

	doc := ""
	for _, p := range g.providers {
		out, err := p.Generate(ctx, prompt)
		if err != nil {
			log.Printf("provider %s failed: %v", p.Name(), err)
			continue
		}
		doc = stripFences(out)
		break
	}

	if strings.TrimSpace(doc) == "" {
		doc = Placeholder(req.Brief)
	}

	return &domain.Artifact{
		Document: doc,
		README:   BuildReadme(req.Task, req.Round, req.Brief, req.Checks),
	}
}

// Placeholder is the degraded result when every provider fails: a minimal
// valid document embedding the brief as title and heading.
func Placeholder(brief string) string {
	escaped := html.EscapeString(brief)
	return fmt.Sprintf(`<!DOCTYPE html>
<html><head><title>%s</title></head><body><h1>%s</h1></body></html>`, escaped, escaped)
}

// stripFences removes surrounding markdown code-fence markers that models
// tend to wrap HTML output in.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```html")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
