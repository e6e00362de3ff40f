// internal/models/contact.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type ContactSubmission struct {
	BaseModel
	Name           string             `json:"name" gorm:"size:255;not null"`
	Email          string             `json:"email" gorm:"size:255;not null"`
	ProjectType    string             `json:"project_type" gorm:"size:100;not null"`
	TechStack      string             `json:"tech_stack" gorm:"size:255"`
	ProjectDetails string             `json:"project_details" gorm:"type:text;not null"`
	Budget         string             `json:"budget" gorm:"size:100"`
	Deadline       string             `json:"deadline" gorm:"size:100"`
	Status         SubmissionStatus   `json:"status" gorm:"type:varchar(20);default:'new';index"`
	Priority       SubmissionPriority `json:"priority" gorm:"type:varchar(20);default:'medium';index"`
	AdminNotes     string             `json:"admin_notes,omitempty" gorm:"type:text"`
	ResolvedBy     *uuid.UUID         `json:"resolved_by" gorm:"type:uuid"`
	ResolvedAt     *time.Time         `json:"resolved_at"`

	// Relationships
	Resolver *User `json:"resolver,omitempty" gorm:"foreignKey:ResolvedBy"`
}
