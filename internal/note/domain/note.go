package domain

import "time"

// Note is a free-form text document. Deletion is soft: a deleted note keeps
// its content and shows up under the "Recently Deleted" view until purged.
type Note struct {
	ID         string     `json:"id" gorm:"primaryKey"`
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	Pinned     bool       `json:"pinned"`
	FolderID   *string    `json:"folder_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	ModifiedAt time.Time  `json:"modified_at"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
}

func (n *Note) IsDeleted() bool {
	return n.DeletedAt != nil
}

// Folder groups notes. The reserved names below are virtual, computed views
// layered over the real notes; they cannot be created, renamed or deleted.
type Folder struct {
	ID    string `json:"id" gorm:"primaryKey"`
	Name  string `json:"name"`
	Icon  string `json:"icon,omitempty"`
	Color string `json:"color,omitempty"`
}

const (
	VirtualAllNotes        = "All Notes"
	VirtualPinned          = "Pinned"
	VirtualRecentlyDeleted = "Recently Deleted"
)

// ReservedFolderName reports whether name collides with a virtual folder.
func ReservedFolderName(name string) bool {
	switch name {
	case VirtualAllNotes, VirtualPinned, VirtualRecentlyDeleted:
		return true
	}
	return false
}
