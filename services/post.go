package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"devconnector/models"
	"devconnector/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	msgPostNotFound    = "Post not found"
	msgCommentNotFound = "Comment does not exist"
	msgAlreadyLiked    = "Post already liked"
	msgNotLiked        = "Post has not yet been liked"
)

type TextInput struct {
	Text string `json:"text" validate:"required"`
}

type PostService struct {
	users repository.UserRepo
	posts repository.PostRepo
	now   func() time.Time
}

func NewPostService(store repository.Store) *PostService {
	return &PostService{users: store, posts: store, now: time.Now}
}

func (s *PostService) CreatePost(ctx context.Context, actor string, in TextInput) (*models.Post, error) {
	uid, err := actorID(actor)
	if err != nil {
		return nil, err
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	author, err := s.author(ctx, uid)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		ID:       primitive.NewObjectID(),
		UserID:   uid,
		Text:     in.Text,
		Name:     author.Name,
		Avatar:   author.Avatar,
		Likes:    []models.Like{},
		Comments: []models.Comment{},
		Date:     s.now().UTC(),
	}
	if err := s.posts.CreatePost(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return post, nil
}

// ListPosts returns every post, newest first.
func (s *PostService) ListPosts(ctx context.Context) ([]models.Post, error) {
	posts, err := s.posts.ListPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

func (s *PostService) GetPost(ctx context.Context, postID string) (*models.Post, error) {
	id, err := documentID(postID, msgPostNotFound)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, id)
}

func (s *PostService) DeletePost(ctx context.Context, actor, postID string) error {
	uid, err := actorID(actor)
	if err != nil {
		return err
	}
	id, err := documentID(postID, msgPostNotFound)
	if err != nil {
		return err
	}
	post, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := ActorOwns(post.UserID, uid); err != nil {
		return err
	}

	err = s.posts.DeletePost(ctx, id)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

func (s *PostService) LikePost(ctx context.Context, actor, postID string) ([]models.Like, error) {
	uid, err := actorID(actor)
	if err != nil {
		return nil, err
	}
	id, err := documentID(postID, msgPostNotFound)
	if err != nil {
		return nil, err
	}
	post, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.LikedBy(uid) {
		return nil, newError(ErrConflict, msgAlreadyLiked)
	}

	likes, err := s.posts.AddLike(ctx, id, models.Like{ID: primitive.NewObjectID(), UserID: uid})
	return likes, listError(err, msgAlreadyLiked, "like post")
}

func (s *PostService) UnlikePost(ctx context.Context, actor, postID string) ([]models.Like, error) {
	uid, err := actorID(actor)
	if err != nil {
		return nil, err
	}
	id, err := documentID(postID, msgPostNotFound)
	if err != nil {
		return nil, err
	}
	post, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !post.LikedBy(uid) {
		return nil, newError(ErrConflict, msgNotLiked)
	}

	likes, err := s.posts.RemoveLike(ctx, id, uid)
	return likes, listError(err, msgNotLiked, "unlike post")
}

func (s *PostService) AddComment(ctx context.Context, actor, postID string, in TextInput) ([]models.Comment, error) {
	uid, err := actorID(actor)
	if err != nil {
		return nil, err
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	id, err := documentID(postID, msgPostNotFound)
	if err != nil {
		return nil, err
	}
	author, err := s.author(ctx, uid)
	if err != nil {
		return nil, err
	}

	comment := models.Comment{
		ID:     primitive.NewObjectID(),
		UserID: uid,
		Text:   in.Text,
		Name:   author.Name,
		Avatar: author.Avatar,
		Date:   s.now().UTC(),
	}
	comments, err := s.posts.PrependComment(ctx, id, comment)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, newError(ErrNotFound, msgPostNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("add comment: %w", err)
	}
	return comments, nil
}

func (s *PostService) RemoveComment(ctx context.Context, actor, postID, commentID string) ([]models.Comment, error) {
	uid, err := actorID(actor)
	if err != nil {
		return nil, err
	}
	id, err := documentID(postID, msgPostNotFound)
	if err != nil {
		return nil, err
	}
	cid, err := documentID(commentID, msgCommentNotFound)
	if err != nil {
		return nil, err
	}
	post, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	comment := post.Comment(cid)
	if comment == nil {
		return nil, newError(ErrNotFound, msgCommentNotFound)
	}
	if err := ActorOwns(comment.UserID, uid); err != nil {
		return nil, err
	}

	comments, err := s.posts.RemoveComment(ctx, id, cid, uid)
	if errors.Is(err, repository.ErrConflict) {
		// removed by a concurrent request after our read
		return nil, newError(ErrNotFound, msgCommentNotFound)
	}
	return comments, listError(err, msgCommentNotFound, "remove comment")
}

func (s *PostService) load(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	post, err := s.posts.GetPost(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, newError(ErrNotFound, msgPostNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	return post, nil
}

// author loads the user whose name and avatar are snapshotted onto new content.
func (s *PostService) author(ctx context.Context, uid primitive.ObjectID) (*models.User, error) {
	u, err := s.users.GetUserByID(ctx, uid)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, newError(ErrNotFound, "User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// listError maps the result of a guarded list update.
func listError(err error, conflictMsg, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrConflict):
		return newError(ErrConflict, conflictMsg)
	case errors.Is(err, repository.ErrNotFound):
		return newError(ErrNotFound, msgPostNotFound)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
