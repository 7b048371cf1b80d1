package core

import (
	"time"
)

// Application status values, kept in Spanish to match the stored data and
// the client apps.
const (
	StatusPendiente  = "pendiente"
	StatusRevision   = "revision"
	StatusAprobado   = "aprobado"
	StatusRechazado  = "rechazado"
	StatusCompletado = "completado"
)

// ValidStatus reports whether s is a known application status.
func ValidStatus(s string) bool {
	switch s {
	case StatusPendiente, StatusRevision, StatusAprobado, StatusRechazado, StatusCompletado:
		return true
	}
	return false
}

// User is a registered applicant. PasswordHash never leaves the server.
type User struct {
	ID             string    `json:"id" bson:"id"`
	Email          string    `json:"email" bson:"email"`
	PasswordHash   string    `json:"-" bson:"password_hash"`
	FullName       string    `json:"full_name" bson:"full_name"`
	Phone          string    `json:"phone" bson:"phone"`
	PassportNumber string    `json:"passport_number" bson:"passport_number"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at"`
	IsActive       bool      `json:"is_active" bson:"is_active"`
}

// PublicProfile returns the fields exposed by the auth and user endpoints.
func (u *User) PublicProfile() map[string]interface{} {
	return map[string]interface{}{
		"id":              u.ID,
		"email":           u.Email,
		"full_name":       u.FullName,
		"phone":           u.Phone,
		"passport_number": u.PassportNumber,
	}
}

// DocumentInfo is an uploaded document attached to an application.
// Data is the base64-encoded file content as sent by the client.
type DocumentInfo struct {
	ID         string    `json:"id" bson:"id"`
	Name       string    `json:"name" bson:"name"`
	Type       string    `json:"type" bson:"type"`
	UploadedAt time.Time `json:"uploaded_at" bson:"uploaded_at"`
	Data       string    `json:"data" bson:"data"`
}

// VisaApplication is one visa request by one user. User fields are
// snapshotted at creation time so later profile edits don't rewrite history.
type VisaApplication struct {
	ID             string         `json:"id" bson:"id"`
	UserID         string         `json:"user_id" bson:"user_id"`
	UserEmail      string         `json:"user_email" bson:"user_email"`
	UserName       string         `json:"user_name" bson:"user_name"`
	UserPhone      string         `json:"user_phone" bson:"user_phone"`
	PassportNumber string         `json:"passport_number" bson:"passport_number"`
	VisaType       string         `json:"visa_type" bson:"visa_type"`
	VisaName       string         `json:"visa_name" bson:"visa_name"`
	Price          int            `json:"price" bson:"price"`
	DepositPaid    int            `json:"deposit_paid" bson:"deposit_paid"`
	TotalPaid      int            `json:"total_paid" bson:"total_paid"`
	Status         string         `json:"status" bson:"status"`
	Documents      []DocumentInfo `json:"documents" bson:"documents"`
	Notes          string         `json:"notes" bson:"notes"`
	AdminNotes     string         `json:"admin_notes" bson:"admin_notes"`
	CreatedAt      time.Time      `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at" bson:"updated_at"`
}

// Testimonial is a past client's approved case shown as social proof on the
// landing screen. ImageData is a base64-encoded image payload.
type Testimonial struct {
	ID          string    `json:"id" bson:"id"`
	ClientName  string    `json:"client_name" bson:"client_name"`
	VisaType    string    `json:"visa_type" bson:"visa_type"`
	Description string    `json:"description" bson:"description"`
	ImageData   string    `json:"image_data" bson:"image_data"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	IsActive    bool      `json:"is_active" bson:"is_active"`
}

// PublicView returns the fields exposed by the public listing. Records
// there are active by definition, so is_active stays internal.
func (t *Testimonial) PublicView() map[string]interface{} {
	return map[string]interface{}{
		"id":          t.ID,
		"client_name": t.ClientName,
		"visa_type":   t.VisaType,
		"description": t.Description,
		"image_data":  t.ImageData,
		"created_at":  t.CreatedAt,
	}
}

// RegisterRequest is the body of POST /api/auth/register
type RegisterRequest struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	FullName       string `json:"full_name"`
	Phone          string `json:"phone"`
	PassportNumber string `json:"passport_number"`
}

// LoginRequest is the body of POST /api/auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ApplicationCreate is the body of POST /api/applications
type ApplicationCreate struct {
	VisaType string `json:"visa_type"`
	Notes    string `json:"notes"`
}

// ApplicationUpdate carries the optional admin-updatable fields of an
// application. Nil fields are left untouched.
type ApplicationUpdate struct {
	Status      *string `json:"status"`
	AdminNotes  *string `json:"admin_notes"`
	DepositPaid *int    `json:"deposit_paid"`
	TotalPaid   *int    `json:"total_paid"`
}

// TestimonialCreate is the body of POST /api/admin/testimonials
type TestimonialCreate struct {
	ClientName  string `json:"client_name"`
	VisaType    string `json:"visa_type"`
	Description string `json:"description"`
	ImageData   string `json:"image_data"`
}

// ApplicationStats is the payload of GET /api/admin/stats
type ApplicationStats struct {
	TotalApplications int `json:"total_applications"`
	Pending           int `json:"pending"`
	InReview          int `json:"in_review"`
	Approved          int `json:"approved"`
	Rejected          int `json:"rejected"`
	Completed         int `json:"completed"`
	TotalRevenue      int `json:"total_revenue"`
	PendingRevenue    int `json:"pending_revenue"`
}
