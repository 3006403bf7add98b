package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/clover/pkg/models"
)

func strptr(s string) *string { return &s }

func int64ptr(i int64) *int64 { return &i }

func primaryAt(id int64, createdAt time.Time) models.Contact {
	return models.Contact{ID: id, LinkPrecedence: models.LinkPrecedencePrimary, CreatedAt: createdAt}
}

func secondaryOf(id, linkedID int64, createdAt time.Time) models.Contact {
	return models.Contact{ID: id, LinkedID: int64ptr(linkedID), LinkPrecedence: models.LinkPrecedenceSecondary, CreatedAt: createdAt}
}

func TestNormalizeIdentifier(t *testing.T) {
	tests := []struct {
		name     string
		input    *string
		expected *string
	}{
		{
			name:     "nil stays nil",
			input:    nil,
			expected: nil,
		},
		{
			name:     "empty string becomes nil",
			input:    strptr(""),
			expected: nil,
		},
		{
			name:     "whitespace only becomes nil",
			input:    strptr("   "),
			expected: nil,
		},
		{
			name:     "surrounding whitespace is trimmed",
			input:    strptr("  a@example.com  "),
			expected: strptr("a@example.com"),
		},
		{
			name:     "case is preserved",
			input:    strptr("A@Example.COM"),
			expected: strptr("A@Example.COM"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NormalizeIdentifier(tt.input)
			if tt.expected == nil {
				assert.Nil(t, result)
			} else {
				require.NotNil(t, result)
				assert.Equal(t, *tt.expected, *result)
			}
		})
	}
}

func TestClusterRoots(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name     string
		contacts []models.Contact
		expected []int64
	}{
		{
			name:     "empty",
			contacts: nil,
			expected: []int64{},
		},
		{
			name:     "primary is its own root",
			contacts: []models.Contact{primaryAt(3, now)},
			expected: []int64{3},
		},
		{
			name: "secondary resolves to its primary",
			contacts: []models.Contact{
				secondaryOf(5, 2, now),
			},
			expected: []int64{2},
		},
		{
			name: "mixed matches from two clusters dedupe and sort",
			contacts: []models.Contact{
				secondaryOf(9, 4, now),
				primaryAt(4, now),
				primaryAt(1, now),
				secondaryOf(7, 1, now),
			},
			expected: []int64{1, 4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClusterRoots(tt.contacts))
		})
	}
}

func TestElectPrimary(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name            string
		candidates      []models.Contact
		expectedPrimary int64
		expectedStale   []int64
		expectError     bool
	}{
		{
			name:            "single primary",
			candidates:      []models.Contact{primaryAt(1, base)},
			expectedPrimary: 1,
			expectedStale:   nil,
		},
		{
			name: "oldest primary wins",
			candidates: []models.Contact{
				primaryAt(2, base.Add(time.Hour)),
				primaryAt(1, base),
				primaryAt(3, base.Add(2*time.Hour)),
			},
			expectedPrimary: 1,
			expectedStale:   []int64{2, 3},
		},
		{
			name: "equal created_at breaks tie on smallest id",
			candidates: []models.Contact{
				primaryAt(8, base),
				primaryAt(4, base),
			},
			expectedPrimary: 4,
			expectedStale:   []int64{8},
		},
		{
			name: "secondaries are ignored for election",
			candidates: []models.Contact{
				secondaryOf(10, 2, base),
				primaryAt(2, base.Add(time.Hour)),
				secondaryOf(11, 2, base.Add(2*time.Hour)),
			},
			expectedPrimary: 2,
			expectedStale:   nil,
		},
		{
			name: "no primary is inconsistent",
			candidates: []models.Contact{
				secondaryOf(10, 2, base),
			},
			expectError: true,
		},
		{
			name:        "empty set is inconsistent",
			candidates:  nil,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			primary, stale, err := ElectPrimary(tt.candidates)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, primary)
			assert.Equal(t, tt.expectedPrimary, primary.ID)

			staleIDs := make([]int64, 0, len(stale))
			for _, s := range stale {
				staleIDs = append(staleIDs, s.ID)
			}
			assert.ElementsMatch(t, tt.expectedStale, staleIDs)
		})
	}
}

func TestHasNewInformation(t *testing.T) {
	now := time.Now()
	members := []models.Contact{
		{ID: 1, Email: strptr("a@example.com"), PhoneNumber: strptr("111"), LinkPrecedence: models.LinkPrecedencePrimary, CreatedAt: now},
		{ID: 2, Email: strptr("b@example.com"), PhoneNumber: strptr("111"), LinkedID: int64ptr(1), LinkPrecedence: models.LinkPrecedenceSecondary, CreatedAt: now},
	}

	tests := []struct {
		name     string
		email    *string
		phone    *string
		expected bool
	}{
		{
			name:     "both known",
			email:    strptr("a@example.com"),
			phone:    strptr("111"),
			expected: false,
		},
		{
			name:     "known pair from different members",
			email:    strptr("b@example.com"),
			phone:    strptr("111"),
			expected: false,
		},
		{
			name:     "new email",
			email:    strptr("c@example.com"),
			phone:    strptr("111"),
			expected: true,
		},
		{
			name:     "new phone",
			email:    strptr("a@example.com"),
			phone:    strptr("222"),
			expected: true,
		},
		{
			name:     "nil identifiers are never new",
			email:    nil,
			phone:    nil,
			expected: false,
		},
		{
			name:     "only known email supplied",
			email:    strptr("a@example.com"),
			phone:    nil,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HasNewInformation(members, tt.email, tt.phone))
		})
	}
}
