package models

// IconKind tells how Group.Icon.Value should be interpreted.
type IconKind string

const (
	// IconColor means the value is a color token (e.g. "#FF6B6B" or "coral").
	IconColor IconKind = "color"
	// IconImage means the value is an image reference (URL or storage path).
	IconImage IconKind = "image"
)

// Icon is either a color token or an image reference.
type Icon struct {
	Kind  IconKind `json:"kind" validate:"required,oneof=color image"`
	Value string   `json:"value" validate:"required,max=512"`
}

// Group represents a set of users who pick movies together.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	// Assigned by the store on creation.
	ID string

	// Name is the user-supplied display name. Never empty.
	Name string

	// Icon is the group's avatar.
	Icon Icon

	// JoinCode is the 6-character code other users type to join
	// (3 uppercase letters followed by 3 digits).
	JoinCode string

	// CreatedBy is the user ID of the group's creator.
	CreatedBy string

	// Members is the set of user IDs in this group, each present at most once.
	// Order follows join time.
	Members []string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// HasMember reports whether userID belongs to the group.
func (g *Group) HasMember(userID string) bool {
	for _, m := range g.Members {
		if m == userID {
			return true
		}
	}
	return false
}
