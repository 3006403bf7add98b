package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Ramsey-B/clover/pkg/models"
)

func TestBuildContactView(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	contact := func(id int64, email, phone string, linkedID *int64, offset time.Duration) models.Contact {
		c := models.Contact{ID: id, LinkedID: linkedID, LinkPrecedence: models.LinkPrecedencePrimary, CreatedAt: base.Add(offset)}
		if linkedID != nil {
			c.LinkPrecedence = models.LinkPrecedenceSecondary
		}
		if email != "" {
			c.Email = strptr(email)
		}
		if phone != "" {
			c.PhoneNumber = strptr(phone)
		}
		return c
	}

	t.Run("single primary", func(t *testing.T) {
		primary := contact(1, "a@example.com", "111", nil, 0)
		view := BuildContactView(primary, []models.Contact{primary})

		assert.Equal(t, int64(1), view.PrimaryContactID)
		assert.Equal(t, []string{"a@example.com"}, view.Emails)
		assert.Equal(t, []string{"111"}, view.PhoneNumbers)
		assert.Empty(t, view.SecondaryContactIDs)
	})

	t.Run("primary identifiers come first", func(t *testing.T) {
		primary := contact(3, "p@example.com", "999", nil, 0)
		members := []models.Contact{
			contact(1, "a@example.com", "111", int64ptr(3), -time.Hour),
			primary,
			contact(5, "b@example.com", "222", int64ptr(3), time.Hour),
		}

		view := BuildContactView(primary, members)

		assert.Equal(t, int64(3), view.PrimaryContactID)
		assert.Equal(t, []string{"p@example.com", "a@example.com", "b@example.com"}, view.Emails)
		assert.Equal(t, []string{"999", "111", "222"}, view.PhoneNumbers)
		assert.Equal(t, []int64{1, 5}, view.SecondaryContactIDs)
	})

	t.Run("duplicate identifiers collapse", func(t *testing.T) {
		primary := contact(1, "a@example.com", "111", nil, 0)
		members := []models.Contact{
			primary,
			contact(2, "a@example.com", "222", int64ptr(1), time.Hour),
			contact(3, "b@example.com", "111", int64ptr(1), 2*time.Hour),
		}

		view := BuildContactView(primary, members)

		assert.Equal(t, []string{"a@example.com", "b@example.com"}, view.Emails)
		assert.Equal(t, []string{"111", "222"}, view.PhoneNumbers)
		assert.Equal(t, []int64{2, 3}, view.SecondaryContactIDs)
	})

	t.Run("nil identifiers are skipped", func(t *testing.T) {
		primary := contact(1, "a@example.com", "", nil, 0)
		members := []models.Contact{
			primary,
			contact(2, "", "111", int64ptr(1), time.Hour),
		}

		view := BuildContactView(primary, members)

		assert.Equal(t, []string{"a@example.com"}, view.Emails)
		assert.Equal(t, []string{"111"}, view.PhoneNumbers)
		assert.Equal(t, []int64{2}, view.SecondaryContactIDs)
	})

	t.Run("slices are empty, never nil", func(t *testing.T) {
		primary := contact(1, "", "", nil, 0)
		view := BuildContactView(primary, []models.Contact{primary})

		assert.NotNil(t, view.Emails)
		assert.NotNil(t, view.PhoneNumbers)
		assert.NotNil(t, view.SecondaryContactIDs)
	})
}
