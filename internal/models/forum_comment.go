package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DeletedCommentPlaceholder is what readers see in place of removed content.
const DeletedCommentPlaceholder = "[Comment deleted]"

type ForumComment struct {
	gorm.Model

	PostID   uint   `gorm:"not null;index:idx_comment_post_created"`
	AuthorID uint   `gorm:"not null;index"`
	Content  string `gorm:"not null"`

	ParentCommentID *uint `gorm:"index"`

	Likes datatypes.JSON `gorm:"type:jsonb"`

	// Tombstone: the row survives, the content is redacted on the way out.
	IsDeleted bool `gorm:"default:false"`

	// Relationships
	Post          ForumPost     `gorm:"foreignKey:PostID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Author        User          `gorm:"foreignKey:AuthorID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	ParentComment *ForumComment `gorm:"foreignKey:ParentCommentID"`
}

// DisplayContent is the only place redaction happens; handlers must never
// serve Content directly.
func (c *ForumComment) DisplayContent() string {
	if c.IsDeleted {
		return DeletedCommentPlaceholder
	}
	return c.Content
}
