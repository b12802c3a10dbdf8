package changelog

import (
	"strings"
	"unicode"

	"github.com/jinzhu/inflection"

	"github.com/heartmarshall/kindergarten-backend/internal/domain"
)

var actionLabels = map[domain.ChangelogAction]string{
	domain.ChangelogActionCreate: "Created",
	domain.ChangelogActionUpdate: "Updated",
	domain.ChangelogActionDelete: "Deleted",
}

var entityTypeLabels = map[string]string{
	domain.EntityTypeGame:          "Game",
	domain.EntityTypeMaterial:      "Material",
	domain.EntityTypeBox:           "Box",
	domain.EntityTypeCategory:      "Category",
	domain.EntityTypeTag:           "Tag",
	domain.EntityTypeGroup:         "Group",
	domain.EntityTypeCalendarEvent: "Calendar event",
	domain.EntityTypeUser:          "User",
}

var fieldLabels = map[string]string{
	"name":         "Name",
	"title":        "Title",
	"description":  "Description",
	"instructions": "Instructions",
	"image_path":   "Image",
	"category_id":  "Category",
	"box_id":       "Box",
	"game_id":      "Game",
	"group_id":     "Group",
	"min_age":      "Minimum age",
	"max_age":      "Maximum age",
	"min_players":  "Minimum players",
	"max_players":  "Maximum players",
	"duration_min": "Duration (min)",
	"quantity":     "Quantity",
	"location":     "Location",
	"label":        "Label",
	"color":        "Color",
	"starts_at":    "Starts at",
	"ends_at":      "Ends at",
	"all_day":      "All day",
	"tags":         "Tags",
}

// ActionLabel returns the display label of an action.
func ActionLabel(a domain.ChangelogAction) string {
	if l, ok := actionLabels[a]; ok {
		return l
	}
	return humanize(string(a))
}

// EntityTypeLabel returns the display label of an entity type. Unknown
// types, including plural table names, are singularised and humanised.
func EntityTypeLabel(entityType string) string {
	if l, ok := entityTypeLabels[entityType]; ok {
		return l
	}
	singular := inflection.Singular(entityType)
	if l, ok := entityTypeLabels[singular]; ok {
		return l
	}
	return humanize(singular)
}

// FieldLabel returns the display label of a field.
func FieldLabel(field string) string {
	if l, ok := fieldLabels[field]; ok {
		return l
	}
	return humanize(strings.TrimSuffix(field, "_id"))
}

// humanize turns "calendar_event" into "Calendar event".
func humanize(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "_", " "))
	if s == "" {
		return ""
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
