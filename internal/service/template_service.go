// internal/service/template_service.go
package service

import (
	"bytes"
	"regexp"
	"strings"
	"text/template"

	appErrors "github.com/ushanirp/messaging-platfor-twilio-poc/internal/errors"
	"github.com/ushanirp/messaging-platfor-twilio-poc/internal/model"
	"github.com/ushanirp/messaging-platfor-twilio-poc/internal/repository"
)

// Template bodies use bare placeholders ({{name}}). bareVarRe rewrites them
// to field references ({{.name}}) before parsing; Go template keywords are
// left alone so conditionals and loops still work.
var bareVarRe = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`)

var templateKeywords = map[string]bool{
	"if": true, "else": true, "end": true, "range": true, "with": true,
	"template": true, "block": true, "define": true,
	"nil": true, "true": true, "false": true,
}

// RenderText expands body against attrs. With strict set, a referenced
// variable missing from attrs is a RenderError rather than an empty
// substitution — silently sending a malformed message to a real recipient
// is worse than failing the render.
func RenderText(body string, attrs map[string]any, strict bool) (string, error) {
	if attrs == nil {
		attrs = map[string]any{}
	}
	src := bareVarRe.ReplaceAllStringFunc(body, func(m string) string {
		name := bareVarRe.FindStringSubmatch(m)[1]
		if templateKeywords[name] {
			return m
		}
		return "{{." + name + "}}"
	})

	missingKey := "missingkey=error"
	if !strict {
		// missingkey=zero prints "<no value>" for absent map keys; the
		// lenient contract is an empty substitution, so blank out every
		// referenced-but-missing variable up front.
		missingKey = "missingkey=zero"
		filled := make(map[string]any, len(attrs))
		for k, v := range attrs {
			filled[k] = v
		}
		for _, m := range bareVarRe.FindAllStringSubmatch(body, -1) {
			if name := m[1]; !templateKeywords[name] {
				if _, ok := filled[name]; !ok {
					filled[name] = ""
				}
			}
		}
		attrs = filled
	}
	tmpl, err := template.New("message").Option(missingKey).Parse(src)
	if err != nil {
		return "", appErrors.NewRenderError(err.Error())
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, attrs); err != nil {
		return "", appErrors.NewRenderError(err.Error())
	}
	return buf.String(), nil
}

type TemplateService struct {
	TemplateRepo repository.TemplateRepositoryInterface
}

func (s *TemplateService) CreateTemplate(channel, locale, body string, placeholders []string) (*model.Template, error) {
	if strings.TrimSpace(body) == "" {
		return nil, appErrors.NewValidation("body", "template body is required")
	}
	if channel == "" {
		channel = "whatsapp"
	}
	if locale == "" {
		locale = "en"
	}
	tpl := &model.Template{
		Channel:      channel,
		Locale:       locale,
		Body:         body,
		Placeholders: placeholders,
	}
	if err := s.TemplateRepo.Create(tpl); err != nil {
		return nil, err
	}
	return tpl, nil
}

// Preview renders a stored template against a caller-supplied placeholder
// map. It never touches the provider, so operators can validate a template
// before launch.
func (s *TemplateService) Preview(templateID int, placeholders map[string]any) (string, error) {
	tpl, err := s.TemplateRepo.GetByID(templateID)
	if err != nil {
		return "", err
	}
	if tpl == nil {
		return "", appErrors.NewTemplateNotFound(templateID)
	}
	return RenderText(tpl.Body, placeholders, true)
}

// PreviewBody renders an inline body without touching storage.
func (s *TemplateService) PreviewBody(body string, placeholders map[string]any) (string, error) {
	if strings.TrimSpace(body) == "" {
		return "", appErrors.NewValidation("body", "template body is required")
	}
	return RenderText(body, placeholders, true)
}
