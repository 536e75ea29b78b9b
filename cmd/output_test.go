package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCreatedPRSummary(t *testing.T) {
	tests := []struct {
		name     string
		created  map[string]any
		expected string
	}{
		{
			name: "id and self link",
			created: map[string]any{
				"id": float64(12),
				"links": map[string]any{
					"self": []any{
						map[string]any{"href": "https://host/projects/PRJ/repos/app/pull-requests/12"},
					},
				},
			},
			expected: "Created PR #12: https://host/projects/PRJ/repos/app/pull-requests/12",
		},
		{
			name:     "id without links",
			created:  map[string]any{"id": float64(3)},
			expected: "Created PR #3",
		},
		{
			name:     "missing id",
			created:  map[string]any{},
			expected: "Created PR #?",
		},
		{
			name: "malformed self links",
			created: map[string]any{
				"id":    float64(5),
				"links": map[string]any{"self": "not-a-list"},
			},
			expected: "Created PR #5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, createdPRSummary(tt.created))
		})
	}
}

func TestRefDisplay(t *testing.T) {
	pr := map[string]any{
		"fromRef": map[string]any{
			"id":        "refs/heads/feature/viz",
			"displayId": "feature/viz",
		},
		"toRef": map[string]any{
			"id": "refs/heads/develop",
		},
	}

	assert.Equal(t, "feature/viz", refDisplay(pr, "fromRef"))
	assert.Equal(t, "refs/heads/develop", refDisplay(pr, "toRef"))
	assert.Equal(t, "", refDisplay(pr, "missing"))
}

func TestPRAuthor(t *testing.T) {
	tests := []struct {
		name     string
		pr       map[string]any
		expected string
	}{
		{
			name: "display name preferred",
			pr: map[string]any{
				"author": map[string]any{
					"user": map[string]any{
						"name":        "some.username",
						"displayName": "Some User",
					},
				},
			},
			expected: "Some User",
		},
		{
			name: "login name fallback",
			pr: map[string]any{
				"author": map[string]any{
					"user": map[string]any{"name": "some.username"},
				},
			},
			expected: "some.username",
		},
		{
			name:     "no author",
			pr:       map[string]any{},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, prAuthor(tt.pr))
		})
	}
}

func TestFormatID(t *testing.T) {
	assert.Equal(t, "42", formatID(float64(42)))
	assert.Equal(t, "abc", formatID("abc"))
	assert.Equal(t, "", formatID(nil))
	assert.Equal(t, "", formatID(true))
}
