package model

import "time"

// Template is a stored custom email template. The default send path
// renders the built-in basic layout; stored templates are managed and
// previewed through the admin API.
type Template struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"size:255;not null"`
	Content      string    `json:"content" gorm:"type:text;not null"`
	TemplateType string    `json:"template_type" gorm:"size:50;index;default:'custom';not null"`
	Category     string    `json:"category" gorm:"size:50;index;default:'newsletter';not null"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Template) TableName() string {
	return "templates"
}
