// internal/models/project.go
package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Project struct {
	BaseModel
	Title           string         `json:"title" gorm:"size:255;not null"`
	Description     string         `json:"description" gorm:"type:text;not null"`
	LongDescription string         `json:"long_description" gorm:"type:text"`
	Category        string         `json:"category" gorm:"size:100;index"`
	Price           int64          `json:"price" gorm:"not null"` // minor currency units
	Currency        string         `json:"currency" gorm:"size:3;default:'INR'"`
	TechStack       pq.StringArray `json:"tech_stack" gorm:"type:text[]"`
	Tags            pq.StringArray `json:"tags" gorm:"type:text[]"`
	Features        pq.StringArray `json:"features" gorm:"type:text[]"`
	Images          pq.StringArray `json:"images" gorm:"type:text[]"`
	DemoURL         string         `json:"demo_url" gorm:"size:500"`
	GithubURL       string         `json:"github_url" gorm:"size:500"`
	License         LicenseType    `json:"license" gorm:"type:varchar(20);default:'commercial'"`
	Difficulty      Difficulty     `json:"difficulty" gorm:"type:varchar(20);index"`
	Version         string         `json:"version" gorm:"size:20;default:'1.0.0'"`
	Featured        bool           `json:"featured" gorm:"default:false;index"`
	Rating          float64        `json:"rating" gorm:"type:decimal(3,2);default:0"`
	ReviewCount     int64          `json:"review_count" gorm:"default:0"`
	Downloads       int64          `json:"downloads" gorm:"default:0"`

	// Relationships
	Files     []ProjectFile `json:"files,omitempty" gorm:"foreignKey:ProjectID"`
	Purchases []Purchase    `json:"purchases,omitempty" gorm:"foreignKey:ProjectID"`
	Reviews   []Review      `json:"reviews,omitempty" gorm:"foreignKey:ProjectID"`
}

type ProjectFile struct {
	BaseModel
	ProjectID  uuid.UUID `json:"project_id" gorm:"type:uuid;not null;index"`
	FileName   string    `json:"file_name" gorm:"size:255;not null"`
	FilePath   string    `json:"file_path" gorm:"size:500;not null"`
	FileSize   int64     `json:"file_size"`
	FileType   string    `json:"file_type" gorm:"size:100"`
	IsMainFile bool      `json:"is_main_file" gorm:"default:false"`

	// Relationships
	Project Project `json:"project,omitempty" gorm:"foreignKey:ProjectID"`
}
