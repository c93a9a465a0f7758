package repository

import (
	"context"
	"errors"

	"devconnector/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store contracts for the three collections. The Mongo implementation lives in
// package database, the in-process one in repository/memory.

var (
	// ErrNotFound is returned when the addressed document or sub-document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrConflict is returned when a guarded update matched the document but its guard failed,
	// e.g. a like that already exists or a unique key that is already taken.
	ErrConflict = errors.New("guarded update rejected")
)

type UserRepo interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// GetUserRefs returns name/avatar for every id that exists.
	GetUserRefs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.UserRef, error)
	DeleteUser(ctx context.Context, id primitive.ObjectID) error
}

type ProfileRepo interface {
	GetProfileByUser(ctx context.Context, userID primitive.ObjectID) (*models.Profile, error)
	ListProfiles(ctx context.Context) ([]models.Profile, error)
	// UpsertProfile sets the given fields on the profile owned by userID, creating it
	// when absent, and returns the stored document.
	UpsertProfile(ctx context.Context, userID primitive.ObjectID, fields ProfileFields) (*models.Profile, error)
	DeleteProfileByUser(ctx context.Context, userID primitive.ObjectID) error

	PrependExperience(ctx context.Context, userID primitive.ObjectID, e models.Experience) (*models.Profile, error)
	RemoveExperience(ctx context.Context, userID, expID primitive.ObjectID) (*models.Profile, error)
	PrependEducation(ctx context.Context, userID primitive.ObjectID, e models.Education) (*models.Profile, error)
	RemoveEducation(ctx context.Context, userID, eduID primitive.ObjectID) (*models.Profile, error)
}

// ProfileFields is the replaceable part of a profile. Social is written as a whole.
type ProfileFields struct {
	Company        string
	Location       string
	Website        string
	Bio            string
	Skills         []string
	Status         string
	GithubUsername string
	Social         models.Social
}

type PostRepo interface {
	CreatePost(ctx context.Context, p *models.Post) error
	ListPosts(ctx context.Context) ([]models.Post, error)
	GetPost(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	DeletePost(ctx context.Context, id primitive.ObjectID) error
	DeletePostsByUser(ctx context.Context, userID primitive.ObjectID) (int64, error)

	// AddLike prepends like unless like.UserID already liked the post (ErrConflict).
	AddLike(ctx context.Context, postID primitive.ObjectID, like models.Like) ([]models.Like, error)
	// RemoveLike pulls the like of userID, ErrConflict when there is none.
	RemoveLike(ctx context.Context, postID, userID primitive.ObjectID) ([]models.Like, error)
	PrependComment(ctx context.Context, postID primitive.ObjectID, c models.Comment) ([]models.Comment, error)
	// RemoveComment pulls the comment only while it is still owned by userID.
	RemoveComment(ctx context.Context, postID, commentID, userID primitive.ObjectID) ([]models.Comment, error)
}

// Store bundles every repository a service layer needs.
type Store interface {
	UserRepo
	ProfileRepo
	PostRepo
}
