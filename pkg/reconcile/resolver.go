// Package reconcile implements contact identity reconciliation: matching
// incoming identifiers against stored contacts, consolidating the clusters a
// request touches, and assembling the canonical contact view.
package reconcile

import (
	"net/http"
	"sort"
	"strings"

	"github.com/Gobusters/ectoerror/httperror"

	"github.com/Ramsey-B/clover/pkg/models"
)

// NormalizeIdentifier trims surrounding whitespace and treats empty strings
// as absent. No other normalization happens; matching is exact.
func NormalizeIdentifier(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// ClusterRoots returns the distinct cluster root ids for the given contacts,
// ascending. Ascending order keeps lock acquisition deterministic.
func ClusterRoots(contacts []models.Contact) []int64 {
	seen := make(map[int64]bool, len(contacts))
	roots := make([]int64, 0, len(contacts))
	for i := range contacts {
		root := contacts[i].RootID()
		if !seen[root] {
			seen[root] = true
			roots = append(roots, root)
		}
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i] < roots[j] })
	return roots
}

// ElectPrimary picks the true primary from a candidate merge set: the primary
// with the earliest created_at, ties broken by smallest id. Every other
// primary in the set is returned as stale. A candidate set with no primary is
// inconsistent data and is reported, not repaired.
func ElectPrimary(candidates []models.Contact) (*models.Contact, []models.Contact, error) {
	var primary *models.Contact
	var stale []models.Contact

	for i := range candidates {
		c := &candidates[i]
		if !c.IsPrimary() {
			continue
		}
		if primary == nil {
			primary = c
			continue
		}
		if c.CreatedAt.Before(primary.CreatedAt) || (c.CreatedAt.Equal(primary.CreatedAt) && c.ID < primary.ID) {
			stale = append(stale, *primary)
			primary = c
		} else {
			stale = append(stale, *c)
		}
	}

	if primary == nil {
		return nil, nil, httperror.NewHTTPError(http.StatusInternalServerError, "contact cluster has no primary")
	}
	return primary, stale, nil
}

// HasNewInformation reports whether either identifier is absent from the
// cluster members. Nil identifiers are never new.
func HasNewInformation(members []models.Contact, email, phoneNumber *string) bool {
	if email != nil {
		known := false
		for i := range members {
			if members[i].Email != nil && *members[i].Email == *email {
				known = true
				break
			}
		}
		if !known {
			return true
		}
	}

	if phoneNumber != nil {
		known := false
		for i := range members {
			if members[i].PhoneNumber != nil && *members[i].PhoneNumber == *phoneNumber {
				known = true
				break
			}
		}
		if !known {
			return true
		}
	}

	return false
}
