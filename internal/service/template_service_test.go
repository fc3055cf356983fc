package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/ushanirp/messaging-platfor-twilio-poc/internal/errors"
	"github.com/ushanirp/messaging-platfor-twilio-poc/internal/service"
)

func TestRenderText(t *testing.T) {
	out, err := service.RenderText(
		"Hi {{name}}, your offer expires {{date}}.",
		map[string]any{"name": "Amina", "date": "Friday"},
		true,
	)
	require.NoError(t, err)
	assert.Equal(t, "Hi Amina, your offer expires Friday.", out)
}

func TestRenderTextStrictMissingVariable(t *testing.T) {
	_, err := service.RenderText(
		"Hi {{name}}, your offer expires {{date}}.",
		map[string]any{"name": "Amina"},
		true,
	)
	var renderErr *appErrors.RenderError
	require.ErrorAs(t, err, &renderErr)
}

func TestRenderTextLenientMissingVariable(t *testing.T) {
	out, err := service.RenderText("Hi {{name}}!", nil, false)
	require.NoError(t, err)
	assert.Equal(t, "Hi !", out)
}

func TestRenderTextWhitespaceAndNonStrings(t *testing.T) {
	out, err := service.RenderText(
		"{{ name }} has {{points}} points",
		map[string]any{"name": "Brian", "points": 42},
		true,
	)
	require.NoError(t, err)
	assert.Equal(t, "Brian has 42 points", out)
}

func TestRenderTextNoPlaceholders(t *testing.T) {
	out, err := service.RenderText("plain text, nothing to expand", nil, true)
	require.NoError(t, err)
	assert.Equal(t, "plain text, nothing to expand", out)
}

func TestRenderTextMalformedTemplate(t *testing.T) {
	var renderErr *appErrors.RenderError

	_, err := service.RenderText("Hi {{name", nil, true)
	require.ErrorAs(t, err, &renderErr)

	_, err = service.RenderText("Hi {{.name | bogus}}", nil, true)
	require.ErrorAs(t, err, &renderErr)
}

func TestTemplateServicePreview(t *testing.T) {
	repo := newMemTemplateRepo()
	svc := &service.TemplateService{TemplateRepo: repo}

	tpl, err := svc.CreateTemplate("", "", "Hi {{name}}!", []string{"name"})
	require.NoError(t, err)
	assert.Equal(t, "whatsapp", tpl.Channel)
	assert.Equal(t, "en", tpl.Locale)

	out, err := svc.Preview(tpl.ID, map[string]any{"name": "Carol"})
	require.NoError(t, err)
	assert.Equal(t, "Hi Carol!", out)

	_, err = svc.Preview(999, nil)
	var notFound *appErrors.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestCreateTemplateRequiresBody(t *testing.T) {
	svc := &service.TemplateService{TemplateRepo: newMemTemplateRepo()}
	_, err := svc.CreateTemplate("whatsapp", "en", "  ", nil)
	var validation *appErrors.ValidationError
	assert.ErrorAs(t, err, &validation)
}
