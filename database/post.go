package database

import (
	"context"
	"errors"

	"devconnector/models"
	"devconnector/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (d *DB) CreatePost(ctx context.Context, p *models.Post) error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	_, err := d.Posts.InsertOne(ctx, p)
	return err
}

func (d *DB) ListPosts(ctx context.Context) ([]models.Post, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cursor, err := d.Posts.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (d *DB) GetPost(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var p models.Post
	if err := d.Posts.FindOne(ctx, byID(id)).Decode(&p); err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (d *DB) DeletePost(ctx context.Context, id primitive.ObjectID) error {
	res, err := d.Posts.DeleteOne(ctx, byID(id))
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (d *DB) DeletePostsByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	res, err := d.Posts.DeleteMany(ctx, bson.M{"user": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (d *DB) AddLike(ctx context.Context, postID primitive.ObjectID, like models.Like) ([]models.Like, error) {
	filter := bson.M{"_id": postID, "likes.user": bson.M{"$ne": like.UserID}}
	update := bson.M{"$push": bson.M{"likes": bson.M{
		"$each":     bson.A{like},
		"$position": 0,
	}}}

	p, err := d.guardedUpdate(ctx, postID, filter, update)
	if err != nil {
		return nil, err
	}
	return p.Likes, nil
}

func (d *DB) RemoveLike(ctx context.Context, postID, userID primitive.ObjectID) ([]models.Like, error) {
	filter := bson.M{"_id": postID, "likes.user": userID}
	update := bson.M{"$pull": bson.M{"likes": bson.M{"user": userID}}}

	p, err := d.guardedUpdate(ctx, postID, filter, update)
	if err != nil {
		return nil, err
	}
	return p.Likes, nil
}

func (d *DB) PrependComment(ctx context.Context, postID primitive.ObjectID, c models.Comment) ([]models.Comment, error) {
	update := bson.M{"$push": bson.M{"comments": bson.M{
		"$each":     bson.A{c},
		"$position": 0,
	}}}

	var p models.Post
	if err := d.Posts.FindOneAndUpdate(ctx, byID(postID), update, after()).Decode(&p); err != nil {
		return nil, notFound(err)
	}
	return p.Comments, nil
}

func (d *DB) RemoveComment(ctx context.Context, postID, commentID, userID primitive.ObjectID) ([]models.Comment, error) {
	filter := bson.M{
		"_id": postID,
		"comments": bson.M{"$elemMatch": bson.M{"_id": commentID, "user": userID}},
	}
	update := bson.M{"$pull": bson.M{"comments": bson.M{"_id": commentID}}}

	p, err := d.guardedUpdate(ctx, postID, filter, update)
	if err != nil {
		return nil, err
	}
	return p.Comments, nil
}

// guardedUpdate applies update when filter matches. A miss is ErrNotFound when the
// post itself is gone and ErrConflict when only the guard failed.
func (d *DB) guardedUpdate(ctx context.Context, postID primitive.ObjectID, filter, update bson.M) (*models.Post, error) {
	var p models.Post
	err := d.Posts.FindOneAndUpdate(ctx, filter, update, after()).Decode(&p)
	if err == nil {
		return &p, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	n, err := d.Posts.CountDocuments(ctx, byID(postID))
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, repository.ErrNotFound
	}
	return nil, repository.ErrConflict
}
