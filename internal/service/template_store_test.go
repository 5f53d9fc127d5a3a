package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blogmailer_backend/internal/model"
	"blogmailer_backend/pkg/config"
)

func newTemplateStore(t *testing.T) *TemplateStoreService {
	t.Helper()
	site := config.SiteConfig{Name: "Test Blog", BaseURL: "https://blog.example.com"}
	return NewTemplateStoreService(newTestDB(t), site)
}

func TestTemplateCreateAndPreview(t *testing.T) {
	svc := newTemplateStore(t)

	tmpl, err := svc.Create(model.Template{
		Name:    "Welcome",
		Content: "<h1>Welcome to {{.SiteName}}, {{.FirstName}}</h1>",
	})
	require.NoError(t, err)

	body, err := svc.Preview(tmpl.ID)
	require.NoError(t, err)
	assert.Contains(t, body, "Welcome to Test Blog")
	assert.Contains(t, body, "Jane")
}

func TestTemplateRejectsBrokenContent(t *testing.T) {
	svc := newTemplateStore(t)

	_, err := svc.Create(model.Template{
		Name:    "Broken",
		Content: "{{.Unclosed",
	})
	assert.Error(t, err)

	templates, err := svc.List()
	require.NoError(t, err)
	assert.Empty(t, templates)
}

func TestTemplateUpdateAndDelete(t *testing.T) {
	svc := newTemplateStore(t)

	tmpl, err := svc.Create(model.Template{Name: "Original", Content: "<p>v1</p>"})
	require.NoError(t, err)

	updated, err := svc.Update(tmpl.ID, model.Template{Name: "Renamed", Content: "<p>v2</p>"})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, "<p>v2</p>", updated.Content)

	require.NoError(t, svc.Delete(tmpl.ID))
	_, err = svc.Get(tmpl.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.Delete(tmpl.ID), ErrNotFound)
}
