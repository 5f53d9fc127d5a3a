package service

import (
	"blogmailer_backend/internal/model"
	"blogmailer_backend/pkg/email"
)

// Settings are the admin-editable newsletter options, stored as one JSON
// value in the options table.
type Settings struct {
	FromName        string   `json:"from_name"`
	FromEmail       string   `json:"from_email"`
	SubjectLine     string   `json:"subject_line"`
	PostsPerEmail   int      `json:"posts_per_email"`
	PostTypes       []string `json:"post_types"`
	PostContentType string   `json:"post_content_type"`
	ExcerptLength   int      `json:"excerpt_length"`

	ScheduleFrequency string `json:"schedule_frequency"`
	ScheduleDay       string `json:"schedule_day"`
	ScheduleTime      string `json:"schedule_time"`

	DoubleOptin     bool   `json:"double_optin"`
	EnableGreeting  bool   `json:"enable_greeting"`
	GreetingText    string `json:"greeting_text"`
	EnableSiteLink  bool   `json:"enable_site_link"`
	UnsubscribeText string `json:"unsubscribe_text"`

	TemplateBgColor      string `json:"template_bg_color"`
	TemplatePrimaryColor string `json:"template_primary_color"`
	TemplateTextColor    string `json:"template_text_color"`
	TemplateLinkColor    string `json:"template_link_color"`
	TemplateHeadingFont  string `json:"template_heading_font"`
	TemplateBodyFont     string `json:"template_body_font"`
}

func DefaultSettings(siteName, adminEmail string) Settings {
	style := email.DefaultStyle()
	return Settings{
		FromName:        siteName,
		FromEmail:       adminEmail,
		SubjectLine:     "[{site_name}] New Posts: {date}",
		PostsPerEmail:   5,
		PostTypes:       []string{"post"},
		PostContentType: "excerpt",
		ExcerptLength:   55,

		ScheduleFrequency: "weekly",
		ScheduleDay:       "monday",
		ScheduleTime:      "09:00",

		DoubleOptin:     false,
		EnableGreeting:  true,
		GreetingText:    "Hi {first_name},",
		EnableSiteLink:  true,
		UnsubscribeText: "Unsubscribe",

		TemplateBgColor:      style.BgColor,
		TemplatePrimaryColor: style.PrimaryColor,
		TemplateTextColor:    style.TextColor,
		TemplateLinkColor:    style.LinkColor,
		TemplateHeadingFont:  style.HeadingFont,
		TemplateBodyFont:     style.BodyFont,
	}
}

// Style maps the stored colors and fonts onto the email renderer's
// style bag, falling back to defaults for unset fields.
func (s Settings) Style() email.TemplateStyle {
	style := email.DefaultStyle()
	if s.TemplateBgColor != "" {
		style.BgColor = s.TemplateBgColor
	}
	if s.TemplatePrimaryColor != "" {
		style.PrimaryColor = s.TemplatePrimaryColor
	}
	if s.TemplateTextColor != "" {
		style.TextColor = s.TemplateTextColor
	}
	if s.TemplateLinkColor != "" {
		style.LinkColor = s.TemplateLinkColor
	}
	if s.TemplateHeadingFont != "" {
		style.HeadingFont = s.TemplateHeadingFont
	}
	if s.TemplateBodyFont != "" {
		style.BodyFont = s.TemplateBodyFont
	}
	return style
}

// SettingsService loads and persists the settings option.
type SettingsService struct {
	options  *OptionService
	defaults Settings
}

func NewSettingsService(options *OptionService, defaults Settings) *SettingsService {
	return &SettingsService{options: options, defaults: defaults}
}

// Get returns the stored settings, or the defaults when none were saved
// yet.
func (s *SettingsService) Get() Settings {
	settings := s.defaults
	if err := s.options.Get(model.OptionSettings, &settings); err != nil {
		return s.defaults
	}
	if settings.PostsPerEmail <= 0 {
		settings.PostsPerEmail = s.defaults.PostsPerEmail
	}
	if len(settings.PostTypes) == 0 {
		settings.PostTypes = s.defaults.PostTypes
	}
	return settings
}

func (s *SettingsService) Save(settings Settings) error {
	return s.options.Set(model.OptionSettings, settings)
}
