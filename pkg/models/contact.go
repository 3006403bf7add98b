package models

import "time"

// Link precedence values for a contact row.
const (
	LinkPrecedencePrimary   = "primary"
	LinkPrecedenceSecondary = "secondary"
)

// Contact represents a single contact row. Contacts form one-level trees:
// a primary has linked_id NULL, a secondary points at its primary.
type Contact struct {
	ID             int64      `json:"id" db:"id"`
	Email          *string    `json:"email,omitempty" db:"email"`
	PhoneNumber    *string    `json:"phone_number,omitempty" db:"phone_number"`
	LinkedID       *int64     `json:"linked_id,omitempty" db:"linked_id"`
	LinkPrecedence string     `json:"link_precedence" db:"link_precedence"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// IsPrimary reports whether the contact is the root of its cluster.
func (c *Contact) IsPrimary() bool {
	return c.LinkPrecedence == LinkPrecedencePrimary
}

// RootID returns the cluster root id: the contact's own id for a primary,
// the linked primary's id for a secondary.
func (c *Contact) RootID() int64 {
	if c.LinkPrecedence == LinkPrecedenceSecondary && c.LinkedID != nil {
		return *c.LinkedID
	}
	return c.ID
}

// IdentifyRequest is the body of POST /identify. At least one of the two
// identifiers must be present; that rule is enforced by the handler since
// validator tags cannot express it.
type IdentifyRequest struct {
	Email       *string `json:"email" validate:"omitempty,max=320"`
	PhoneNumber *string `json:"phoneNumber" validate:"omitempty,max=32"`
}

// ContactView is the consolidated cluster view returned by identify.
type ContactView struct {
	PrimaryContactID    int64    `json:"primaryContactId"`
	Emails              []string `json:"emails"`
	PhoneNumbers        []string `json:"phoneNumbers"`
	SecondaryContactIDs []int64  `json:"secondaryContactIds"`
}

// IdentifyResponse wraps the consolidated view.
type IdentifyResponse struct {
	Contact ContactView `json:"contact"`
}
