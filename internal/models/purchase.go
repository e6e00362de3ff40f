// internal/models/purchase.go
package models

import (
	"github.com/google/uuid"
)

// Purchase is the record of one buyer acquiring one project. The license
// key is written once at creation and never updated; download_count only
// moves through the guarded increment in the purchase package.
type Purchase struct {
	BaseModel
	UserID        uuid.UUID     `json:"user_id" gorm:"type:uuid;not null;index"`
	ProjectID     uuid.UUID     `json:"project_id" gorm:"type:uuid;not null;index"`
	Amount        int64         `json:"amount" gorm:"not null"` // minor currency units
	Currency      string        `json:"currency" gorm:"size:3;default:'INR'"`
	PaymentStatus PaymentStatus `json:"payment_status" gorm:"type:varchar(20);default:'pending';index"`
	PaymentMethod string        `json:"payment_method" gorm:"size:50"`
	TransactionID string        `json:"transaction_id" gorm:"size:255"`
	LicenseKey    string        `json:"license_key" gorm:"size:19;uniqueIndex"`
	DownloadCount int           `json:"download_count" gorm:"default:0"`
	MaxDownloads  int           `json:"max_downloads" gorm:"default:5"`
	BuyerDetails  JSONB         `json:"buyer_details" gorm:"type:jsonb"`

	// Relationships
	User    User    `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Project Project `json:"project,omitempty" gorm:"foreignKey:ProjectID"`
}

func (p *Purchase) DownloadsRemaining() int {
	remaining := p.MaxDownloads - p.DownloadCount
	if remaining < 0 {
		return 0
	}
	return remaining
}
