package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/ecyouth/portal/db"
	"github.com/ecyouth/portal/internal/models"
	"github.com/ecyouth/portal/internal/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ForumPostRequest struct {
	Title    string         `json:"title" binding:"required,max=200"`
	Content  string         `json:"content" binding:"required"`
	Category string         `json:"category"`
	Tags     datatypes.JSON `json:"tags"`
}

type ForumCommentRequest struct {
	Content         string `json:"content" binding:"required"`
	ParentCommentID *uint  `json:"parent_comment_id"`
}

type forumCommentView struct {
	ID              uint      `json:"id"`
	PostID          uint      `json:"post_id"`
	AuthorID        uint      `json:"author_id"`
	AuthorName      string    `json:"author_name"`
	Content         string    `json:"content"`
	ParentCommentID *uint     `json:"parent_comment_id,omitempty"`
	Likes           int       `json:"likes"`
	IsDeleted       bool      `json:"is_deleted"`
	CreatedAt       time.Time `json:"created_at"`
}

func ListForumPosts(ctx *gin.Context) {
	page, limit, offset := utils.ParsePagination(ctx, 20, 50)

	query := db.DB.Model(&models.ForumPost{})

	if category := ctx.Query("category"); category != "" && category != "all" {
		query = query.Where("category = ?", category)
	}

	if search := ctx.Query("search"); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("title ILIKE ? OR content ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve posts"})
		return
	}

	var posts []models.ForumPost

	// Pinned posts float above everything regardless of activity.
	if err := query.Preload("Author").
		Order("is_pinned DESC, last_activity DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve posts"})
		return
	}

	for i := range posts {
		posts[i].Author.PasswordHash = ""
	}

	ctx.JSON(http.StatusOK, gin.H{
		"posts":        posts,
		"total":        total,
		"total_pages":  utils.TotalPages(total, limit),
		"current_page": page,
	})
}

func GetForumPost(ctx *gin.Context) {
	id, err := utils.GetIDParam(ctx, "id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var post models.ForumPost

	if err := db.DB.Preload("Author").First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve post"})
		}
		return
	}

	if err := db.DB.Model(&post).
		UpdateColumn("views", gorm.Expr("views + ?", 1)).Error; err != nil {
		log.Printf("Failed to increment views for post %d: %v", id, err)
	} else {
		post.Views++
	}

	var comments []models.ForumComment

	if err := db.DB.Preload("Author").
		Where("post_id = ?", id).
		Order("created_at ASC").
		Find(&comments).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve comments"})
		return
	}

	post.Author.PasswordHash = ""

	views := make([]forumCommentView, 0, len(comments))
	for i := range comments {
		views = append(views, commentView(&comments[i]))
	}

	ctx.JSON(http.StatusOK, gin.H{
		"post":     post,
		"comments": views,
		"likes":    models.CountLikes(post.Likes),
	})
}

func CreateForumPost(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req ForumPostRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Title and content are required"})
		return
	}

	category := req.Category
	if category == "" {
		category = "general"
	}

	if !models.ValidForumCategory(category) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid forum category"})
		return
	}

	post := models.ForumPost{
		Title:        req.Title,
		Content:      req.Content,
		Category:     category,
		AuthorID:     userID,
		Tags:         req.Tags,
		Likes:        datatypes.JSON("[]"),
		LastActivity: time.Now(),
	}

	if err := db.DB.Create(&post).Error; err != nil {
		log.Printf("Failed to create forum post: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create post"})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "Post created",
		"post":    post,
	})
}

func UpdateForumPost(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	id, err := utils.GetIDParam(ctx, "id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req ForumPostRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Title and content are required"})
		return
	}

	var post models.ForumPost

	if err := db.DB.First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve post"})
		}
		return
	}

	if !utils.CanModerate(currentUser, post.AuthorID) {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to edit this post"})
		return
	}

	post.Title = req.Title
	post.Content = req.Content
	if req.Category != "" {
		if !models.ValidForumCategory(req.Category) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid forum category"})
			return
		}
		post.Category = req.Category
	}
	post.Tags = req.Tags

	if err := db.DB.Save(&post).Error; err != nil {
		log.Printf("Failed to update forum post %d: %v", id, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update post"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Post updated",
		"post":    post,
	})
}

// DeleteForumPost removes a post and its comment thread. Posts are hard
// deleted; only comments use the tombstone treatment.
func DeleteForumPost(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	id, err := utils.GetIDParam(ctx, "id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var post models.ForumPost

	if err := db.DB.First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve post"})
		}
		return
	}

	if !utils.CanModerate(currentUser, post.AuthorID) {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to delete this post"})
		return
	}

	if err := db.DB.Where("post_id = ?", id).Delete(&models.ForumComment{}).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete post"})
		return
	}

	if err := db.DB.Delete(&post).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete post"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Post deleted"})
}

// LikeForumPost toggles the caller's like on a post.
func LikeForumPost(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	id, err := utils.GetIDParam(ctx, "id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var post models.ForumPost

	if err := db.DB.First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve post"})
		}
		return
	}

	likes, liked := models.ToggleLike(post.Likes, userID)

	if err := db.DB.Model(&post).UpdateColumn("likes", likes).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update likes"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"liked": liked,
		"likes": models.CountLikes(likes),
	})
}

func CreateForumComment(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	postID, err := utils.GetIDParam(ctx, "id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req ForumCommentRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Content is required"})
		return
	}

	var post models.ForumPost

	if err := db.DB.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve post"})
		}
		return
	}

	if post.IsLocked {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Post is locked"})
		return
	}

	if req.ParentCommentID != nil {
		var parent models.ForumComment
		if err := db.DB.First(&parent, *req.ParentCommentID).Error; err != nil ||
			parent.PostID != postID {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Parent comment not found on this post"})
			return
		}
	}

	comment := models.ForumComment{
		PostID:          postID,
		AuthorID:        userID,
		Content:         req.Content,
		ParentCommentID: req.ParentCommentID,
		Likes:           datatypes.JSON("[]"),
	}

	if err := db.DB.Create(&comment).Error; err != nil {
		log.Printf("Failed to create comment on post %d: %v", postID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create comment"})
		return
	}

	db.DB.Model(&post).UpdateColumn("last_activity", time.Now())

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "Comment added",
		"comment": commentView(&comment),
	})
}

// DeleteForumComment tombstones a comment: replies keep their anchor, readers
// see the placeholder.
func DeleteForumComment(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	id, err := utils.GetIDParam(ctx, "id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var comment models.ForumComment

	if err := db.DB.First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve comment"})
		}
		return
	}

	if !utils.CanModerate(currentUser, comment.AuthorID) {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to delete this comment"})
		return
	}

	if err := db.DB.Model(&comment).UpdateColumn("is_deleted", true).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete comment"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Comment deleted"})
}

// LikeForumComment toggles the caller's like on a comment.
func LikeForumComment(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	id, err := utils.GetIDParam(ctx, "id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var comment models.ForumComment

	if err := db.DB.First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve comment"})
		}
		return
	}

	if comment.IsDeleted {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Cannot like a deleted comment"})
		return
	}

	likes, liked := models.ToggleLike(comment.Likes, userID)

	if err := db.DB.Model(&comment).UpdateColumn("likes", likes).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update likes"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"liked": liked,
		"likes": models.CountLikes(likes),
	})
}

func commentView(c *models.ForumComment) forumCommentView {
	return forumCommentView{
		ID:              c.ID,
		PostID:          c.PostID,
		AuthorID:        c.AuthorID,
		AuthorName:      c.Author.Name,
		Content:         c.DisplayContent(),
		ParentCommentID: c.ParentCommentID,
		Likes:           models.CountLikes(c.Likes),
		IsDeleted:       c.IsDeleted,
		CreatedAt:       c.CreatedAt,
	}
}
