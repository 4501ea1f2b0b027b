package models

import "time"

// Business represents a tenant business whose conversations the bot handles.
type Business struct {
	ID   string `json:"id" bson:"_id"`
	Name string `json:"name" bson:"name"`
	// Phone is the operator WhatsApp number escalation notifications are
	// sent to. May be empty, in which case a configured fallback applies.
	Phone string `json:"phone,omitempty" bson:"phone,omitempty"`
	// WhatsAppNumber is the number customers message the bot on.
	WhatsAppNumber string    `json:"whatsappNumber,omitempty" bson:"whatsappNumber,omitempty"`
	TimeZone       string    `json:"timeZone,omitempty" bson:"timeZone,omitempty"`
	CreatedAt      time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt" bson:"updatedAt"`
}

// User represents a registered customer account.
type User struct {
	ID        string    `json:"id" bson:"_id"`
	FirstName string    `json:"firstName,omitempty" bson:"firstName,omitempty"`
	LastName  string    `json:"lastName,omitempty" bson:"lastName,omitempty"`
	Phone     string    `json:"phone,omitempty" bson:"phone,omitempty"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// FullName joins the user's first and last names, skipping empty parts.
func (u *User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.LastName
	}
}
