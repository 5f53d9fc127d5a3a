package service

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"

	"gorm.io/gorm"

	"blogmailer_backend/internal/model"
	"blogmailer_backend/pkg/config"
)

// TemplateStoreService manages the admin-authored email templates kept
// alongside the built-in layouts.
type TemplateStoreService struct {
	db   *gorm.DB
	site config.SiteConfig
}

func NewTemplateStoreService(db *gorm.DB, site config.SiteConfig) *TemplateStoreService {
	return &TemplateStoreService{db: db, site: site}
}

func (s *TemplateStoreService) List() ([]model.Template, error) {
	var templates []model.Template
	err := s.db.Order("created_at DESC").Find(&templates).Error
	return templates, err
}

func (s *TemplateStoreService) Get(id uint) (*model.Template, error) {
	var tmpl model.Template
	if err := s.db.First(&tmpl, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &tmpl, nil
}

func (s *TemplateStoreService) Create(tmpl model.Template) (*model.Template, error) {
	if err := s.validate(tmpl.Content); err != nil {
		return nil, err
	}
	if err := s.db.Create(&tmpl).Error; err != nil {
		return nil, err
	}
	return &tmpl, nil
}

func (s *TemplateStoreService) Update(id uint, updates model.Template) (*model.Template, error) {
	tmpl, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if updates.Content != "" {
		if err := s.validate(updates.Content); err != nil {
			return nil, err
		}
		tmpl.Content = updates.Content
	}
	if updates.Name != "" {
		tmpl.Name = updates.Name
	}
	if updates.Category != "" {
		tmpl.Category = updates.Category
	}
	if err := s.db.Save(tmpl).Error; err != nil {
		return nil, err
	}
	return tmpl, nil
}

func (s *TemplateStoreService) Delete(id uint) error {
	result := s.db.Delete(&model.Template{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Preview renders a stored template against placeholder data so the
// admin can inspect it before use.
func (s *TemplateStoreService) Preview(id uint) (string, error) {
	tmpl, err := s.Get(id)
	if err != nil {
		return "", err
	}
	return s.renderContent(tmpl.Content)
}

func (s *TemplateStoreService) validate(content string) error {
	if _, err := s.renderContent(content); err != nil {
		return fmt.Errorf("template does not render: %w", err)
	}
	return nil
}

func (s *TemplateStoreService) renderContent(content string) (string, error) {
	t, err := template.New("custom").Parse(content)
	if err != nil {
		return "", err
	}

	data := map[string]interface{}{
		"SiteName":  s.site.Name,
		"SiteURL":   s.site.BaseURL,
		"FirstName": "Jane",
		"LastName":  "Doe",
	}
	var body bytes.Buffer
	if err := t.Execute(&body, data); err != nil {
		return "", err
	}
	return body.String(), nil
}
