package reconcile

import "github.com/Ramsey-B/clover/pkg/models"

// BuildContactView assembles the consolidated cluster view. The primary's
// identifiers come first, then each member's in creation order, deduplicated.
// Secondary ids keep creation order. Members must be sorted oldest first and
// include the primary.
func BuildContactView(primary models.Contact, members []models.Contact) models.ContactView {
	view := models.ContactView{
		PrimaryContactID:    primary.ID,
		Emails:              make([]string, 0, len(members)),
		PhoneNumbers:        make([]string, 0, len(members)),
		SecondaryContactIDs: make([]int64, 0, len(members)),
	}

	seenEmails := make(map[string]bool, len(members))
	seenPhones := make(map[string]bool, len(members))

	appendIdentifiers := func(c *models.Contact) {
		if c.Email != nil && !seenEmails[*c.Email] {
			seenEmails[*c.Email] = true
			view.Emails = append(view.Emails, *c.Email)
		}
		if c.PhoneNumber != nil && !seenPhones[*c.PhoneNumber] {
			seenPhones[*c.PhoneNumber] = true
			view.PhoneNumbers = append(view.PhoneNumbers, *c.PhoneNumber)
		}
	}

	appendIdentifiers(&primary)
	for i := range members {
		if members[i].ID == primary.ID {
			continue
		}
		appendIdentifiers(&members[i])
		view.SecondaryContactIDs = append(view.SecondaryContactIDs, members[i].ID)
	}

	return view
}
