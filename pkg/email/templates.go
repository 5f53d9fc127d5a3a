package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

// TemplateStyle carries the admin-configurable look of the outgoing
// emails. Zero values are filled by DefaultStyle.
type TemplateStyle struct {
	BgColor      string
	PrimaryColor string
	TextColor    string
	LinkColor    string
	HeadingFont  string
	BodyFont     string
}

func DefaultStyle() TemplateStyle {
	return TemplateStyle{
		BgColor:      "#f5f5f5",
		PrimaryColor: "#0073aa",
		TextColor:    "#333333",
		LinkColor:    "#0073aa",
		HeadingFont:  "Arial, sans-serif",
		BodyFont:     "Arial, sans-serif",
	}
}

type NewsletterPost struct {
	Title       string
	Excerpt     string
	URL         string
	PublishedAt time.Time
}

// NewsletterData is the data bag for the digest layout. Greeting is the
// already-personalized first line; empty disables it.
type NewsletterData struct {
	Heading          string
	Greeting         string
	Posts            []NewsletterPost
	SiteName         string
	SiteURL          string
	EnableSiteLink   bool
	UnsubscribeURL   string
	UnsubscribeText  string
	TrackingPixelURL string
	Style            TemplateStyle
}

type ConfirmationData struct {
	FirstName  string
	SiteName   string
	ConfirmURL string
	Style      TemplateStyle
}

type WeeklyReportData struct {
	SiteName             string
	WeekStart            time.Time
	WeekEnd              time.Time
	TotalSent            int64
	TotalFailed          int64
	NewSubscribers       int64
	ConfirmedSubscribers int64
	Style                TemplateStyle
}

// Renderer renders the built-in email layouts from the embedded
// template set.
type Renderer struct {
	templates *template.Template
}

func NewRenderer() (*Renderer, error) {
	t, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("error loading email templates: %w", err)
	}
	return &Renderer{templates: t}, nil
}

func (r *Renderer) render(name string, data interface{}) (string, error) {
	var body bytes.Buffer
	if err := r.templates.ExecuteTemplate(&body, name, data); err != nil {
		return "", fmt.Errorf("template execution error: %w", err)
	}
	return body.String(), nil
}

func (r *Renderer) RenderNewsletter(data NewsletterData) (string, error) {
	return r.render("newsletter.html", data)
}

func (r *Renderer) RenderConfirmation(data ConfirmationData) (string, error) {
	return r.render("confirmation.html", data)
}

func (r *Renderer) RenderWeeklyReport(data WeeklyReportData) (string, error) {
	return r.render("weekly_report.html", data)
}
