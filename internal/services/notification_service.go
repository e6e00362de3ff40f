// internal/services/notification_service.go
package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/codehaven/codehaven-backend/internal/config"
	"github.com/codehaven/codehaven-backend/internal/models"
)

type NotificationService struct {
	db     *gorm.DB
	config *config.Config
}

type EmailTemplate struct {
	Subject string
	Body    string
}

func NewNotificationService(db *gorm.DB, config *config.Config) *NotificationService {
	return &NotificationService{
		db:     db,
		config: config,
	}
}

// Authentication notifications

func (s *NotificationService) SendWelcomeEmail(user *models.User) error {
	tmpl := s.getEmailTemplate("welcome")

	data := map[string]interface{}{
		"FullName":     user.FullName,
		"StoreURL":     s.config.Frontend.BaseURL,
		"PlatformName": "CodeHaven",
	}

	subject := "Welcome to CodeHaven"
	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(user.Email, subject, body)
}

func (s *NotificationService) SendPasswordResetEmail(user *models.User, resetToken string) error {
	tmpl := s.getEmailTemplate("password_reset")

	data := map[string]interface{}{
		"FullName":  user.FullName,
		"ResetURL":  fmt.Sprintf("%s/reset-password?token=%s", s.config.Frontend.BaseURL, resetToken),
		"ExpiresIn": "1 hour",
	}

	subject := "Password Reset Request"
	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(user.Email, subject, body)
}

// Purchase notifications

func (s *NotificationService) SendPurchaseConfirmation(record *models.Purchase) error {
	var user models.User
	if err := s.db.First(&user, record.UserID).Error; err != nil {
		return fmt.Errorf("buyer not found: %w", err)
	}

	var project models.Project
	if err := s.db.First(&project, record.ProjectID).Error; err != nil {
		return fmt.Errorf("project not found: %w", err)
	}

	data := map[string]interface{}{
		"FullName":     user.FullName,
		"ProjectTitle": project.Title,
		"LicenseKey":   record.LicenseKey,
		"Amount":       formatAmount(record.Amount, record.Currency),
		"MaxDownloads": record.MaxDownloads,
		"LibraryURL":   fmt.Sprintf("%s/dashboard/purchases", s.config.Frontend.BaseURL),
	}

	subject := "Purchase Confirmation - " + project.Title
	tmpl := s.getEmailTemplate("purchase_confirmation")
	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(user.Email, subject, body)
}

func (s *NotificationService) SendRefundNotification(record *models.Purchase, reason string) error {
	var user models.User
	if err := s.db.First(&user, record.UserID).Error; err != nil {
		return fmt.Errorf("buyer not found: %w", err)
	}

	var project models.Project
	if err := s.db.First(&project, record.ProjectID).Error; err != nil {
		return fmt.Errorf("project not found: %w", err)
	}

	data := map[string]interface{}{
		"FullName":     user.FullName,
		"ProjectTitle": project.Title,
		"Amount":       formatAmount(record.Amount, record.Currency),
		"Reason":       reason,
	}

	subject := "Refund Processed - " + project.Title
	tmpl := s.getEmailTemplate("refund_notification")
	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(user.Email, subject, body)
}

// Contact notifications

func (s *NotificationService) SendContactAcknowledgement(submission *models.ContactSubmission) error {
	data := map[string]interface{}{
		"Name":        submission.Name,
		"ProjectType": submission.ProjectType,
	}

	subject := "We received your project inquiry"
	tmpl := s.getEmailTemplate("contact_acknowledgement")
	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(submission.Email, subject, body)
}

// Admin notifications

func (s *NotificationService) SendUserStatusChangeNotification(user *models.User, oldStatus models.UserStatus, reason string) error {
	data := map[string]interface{}{
		"FullName":  user.FullName,
		"NewStatus": user.Status,
		"OldStatus": oldStatus,
		"Reason":    reason,
	}

	subject := "Account Status Update"
	tmpl := s.getEmailTemplate("user_status_change")
	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(user.Email, subject, body)
}

// Helper methods

func (s *NotificationService) sendEmail(to, subject, body string) error {
	if s.config.Email.SMTPUsername == "" {
		// Email not configured, just log
		logrus.WithFields(logrus.Fields{
			"to":      to,
			"subject": subject,
		}).Info("Email not configured, skipping send")
		return nil
	}

	// Setup authentication
	auth := smtp.PlainAuth("", s.config.Email.SMTPUsername, s.config.Email.SMTPPassword, s.config.Email.SMTPHost)

	// Compose message
	msg := []byte(fmt.Sprintf("To: %s\r\nSubject: %s\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s", to, subject, body))

	// Send email
	addr := fmt.Sprintf("%s:%s", s.config.Email.SMTPHost, s.config.Email.SMTPPort)
	return smtp.SendMail(addr, auth, s.config.Email.FromEmail, []string{to}, msg)
}

func (s *NotificationService) renderTemplate(templateStr string, data interface{}) (string, error) {
	tmpl, err := template.New("email").Parse(templateStr)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func formatAmount(minor int64, currency string) string {
	return fmt.Sprintf("%s %.2f", currency, float64(minor)/100)
}

func (s *NotificationService) getEmailTemplate(templateType string) EmailTemplate {
	// In a real implementation, these would be loaded from files or database
	templates := map[string]EmailTemplate{
		"welcome": {
			Subject: "Welcome to CodeHaven",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Welcome {{.FullName}}!</h2>
	<p>Thank you for joining CodeHaven. Browse ready-to-ship projects and start building faster:</p>
	<a href="{{.StoreURL}}">Explore Projects</a>
	<p>Best regards,<br>{{.PlatformName}} Team</p>
</body>
</html>`,
		},
		"password_reset": {
			Subject: "Password Reset Request",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Password Reset</h2>
	<p>Hello {{.FullName}},</p>
	<p>Click the link below to reset your password. The link expires in {{.ExpiresIn}}.</p>
	<a href="{{.ResetURL}}">Reset Password</a>
	<p>If you did not request this, you can ignore this email.</p>
	<p>Best regards,<br>CodeHaven Team</p>
</body>
</html>`,
		},
		"purchase_confirmation": {
			Subject: "Purchase Confirmation",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Thank you for your purchase!</h2>
	<p>Hello {{.FullName}},</p>
	<p>Your purchase of "{{.ProjectTitle}}" ({{.Amount}}) is complete.</p>
	<p>Your license key: <strong>{{.LicenseKey}}</strong></p>
	<p>You can download the project up to {{.MaxDownloads}} times from your library:</p>
	<a href="{{.LibraryURL}}">Go to My Purchases</a>
	<p>Best regards,<br>CodeHaven Team</p>
</body>
</html>`,
		},
		"contact_acknowledgement": {
			Subject: "We received your project inquiry",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Thanks for reaching out!</h2>
	<p>Hello {{.Name}},</p>
	<p>We received your inquiry about a {{.ProjectType}} project and will get back to you within two business days.</p>
	<p>Best regards,<br>CodeHaven Team</p>
</body>
</html>`,
		},
		"refund_notification": {
			Subject: "Refund Processed",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Refund Processed</h2>
	<p>Hello {{.FullName}},</p>
	<p>Your refund of {{.Amount}} for "{{.ProjectTitle}}" has been processed.</p>
	<p>Reason: {{.Reason}}</p>
	<p>Best regards,<br>CodeHaven Team</p>
</body>
</html>`,
		},
		"user_status_change": {
			Subject: "Account Status Update",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Account Status Update</h2>
	<p>Hello {{.FullName}},</p>
	<p>Your account status changed from {{.OldStatus}} to {{.NewStatus}}.</p>
	<p>Reason: {{.Reason}}</p>
	<p>Best regards,<br>CodeHaven Team</p>
</body>
</html>`,
		},
	}

	if tmpl, exists := templates[templateType]; exists {
		return tmpl
	}

	// Default template
	return EmailTemplate{
		Subject: "Notification",
		Body:    "<p>{{.Message}}</p>",
	}
}
