package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ForumCategories = []string{
	"bursaries", "careers", "learnerships", "business", "general",
	"success-stories", "advice",
}

type ForumPost struct {
	gorm.Model

	Title    string `gorm:"not null;size:200"`
	Content  string `gorm:"not null"`
	Category string `gorm:"not null;default:general;index:idx_post_category_created"`
	AuthorID uint   `gorm:"not null;index"`

	Tags  datatypes.JSON `gorm:"type:jsonb"`
	Likes datatypes.JSON `gorm:"type:jsonb"`

	Views    int  `gorm:"default:0"`
	IsPinned bool `gorm:"default:false"`
	IsLocked bool `gorm:"default:false"`

	LastActivity time.Time `gorm:"index"`

	// Relationships
	Author User `gorm:"foreignKey:AuthorID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

func ValidForumCategory(category string) bool {
	for _, c := range ForumCategories {
		if c == category {
			return true
		}
	}
	return false
}

// ToggleLike adds the user to the like set if absent, removes them otherwise.
// Returns the updated set and whether the user now likes the item.
func ToggleLike(likes datatypes.JSON, userID uint) (datatypes.JSON, bool) {
	ids := likeSet(likes)

	for i, id := range ids {
		if id == userID {
			ids = append(ids[:i], ids[i+1:]...)
			return marshalLikes(ids), false
		}
	}

	ids = append(ids, userID)
	return marshalLikes(ids), true
}

// CountLikes returns the size of the like set.
func CountLikes(likes datatypes.JSON) int {
	return len(likeSet(likes))
}

func likeSet(likes datatypes.JSON) []uint {
	if len(likes) == 0 {
		return nil
	}

	var ids []uint
	if err := json.Unmarshal(likes, &ids); err != nil {
		return nil
	}

	return ids
}

func marshalLikes(ids []uint) datatypes.JSON {
	if ids == nil {
		ids = []uint{}
	}

	data, err := json.Marshal(ids)
	if err != nil {
		return datatypes.JSON("[]")
	}

	return datatypes.JSON(data)
}
