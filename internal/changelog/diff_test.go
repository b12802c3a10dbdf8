package changelog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/heartmarshall/kindergarten-backend/internal/domain"
)

func TestGetChanges(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		before map[string]any
		after  map[string]any
		fields []string
		want   map[string]domain.FieldChange
	}{
		{
			name:   "single changed field",
			before: map[string]any{"name": "A", "color": "red"},
			after:  map[string]any{"name": "A", "color": "blue"},
			fields: []string{"name", "color"},
			want:   map[string]domain.FieldChange{"color": {Old: "red", New: "blue"}},
		},
		{
			name:   "int and string are equal",
			before: map[string]any{"quantity": 1},
			after:  map[string]any{"quantity": "1"},
			fields: []string{"quantity"},
			want:   map[string]domain.FieldChange{},
		},
		{
			name:   "float and string are equal",
			before: map[string]any{"rating": 4.5},
			after:  map[string]any{"rating": "4.5"},
			fields: []string{"rating"},
			want:   map[string]domain.FieldChange{},
		},
		{
			name:   "nil and empty string are equal",
			before: map[string]any{"description": nil},
			after:  map[string]any{"description": ""},
			fields: []string{"description"},
			want:   map[string]domain.FieldChange{},
		},
		{
			name:   "bool compares like its stored form",
			before: map[string]any{"all_day": true},
			after:  map[string]any{"all_day": "1"},
			fields: []string{"all_day"},
			want:   map[string]domain.FieldChange{},
		},
		{
			name:   "false equals missing",
			before: map[string]any{"all_day": false},
			after:  map[string]any{},
			fields: []string{"all_day"},
			want:   map[string]domain.FieldChange{},
		},
		{
			name:   "untracked fields ignored",
			before: map[string]any{"name": "A", "updated_at": "x"},
			after:  map[string]any{"name": "A", "updated_at": "y"},
			fields: []string{"name"},
			want:   map[string]domain.FieldChange{},
		},
		{
			name:   "added value",
			before: map[string]any{},
			after:  map[string]any{"box_id": 3},
			fields: []string{"box_id"},
			want:   map[string]domain.FieldChange{"box_id": {Old: nil, New: 3}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, GetChanges(tt.before, tt.after, tt.fields))
		})
	}
}

func TestLabels(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Created", ActionLabel(domain.ChangelogActionCreate))
	assert.Equal(t, "Archive", ActionLabel("archive"))

	assert.Equal(t, "Calendar event", EntityTypeLabel(domain.EntityTypeCalendarEvent))
	assert.Equal(t, "Box", EntityTypeLabel("boxes"))
	assert.Equal(t, "Category", EntityTypeLabel("categories"))
	assert.Equal(t, "Game session", EntityTypeLabel("game_sessions"))

	assert.Equal(t, "Image", FieldLabel("image_path"))
	assert.Equal(t, "Teacher", FieldLabel("teacher_id"))
	assert.Equal(t, "Sort order", FieldLabel("sort_order"))
}
