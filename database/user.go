package database

import (
	"context"

	"devconnector/models"
	"devconnector/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func (d *DB) CreateUser(ctx context.Context, u *models.User) error {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	_, err := d.Users.InsertOne(ctx, u)
	if mongo.IsDuplicateKeyError(err) {
		return repository.ErrConflict
	}
	return err
}

func (d *DB) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := d.Users.FindOne(ctx, byID(id)).Decode(&u); err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (d *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := d.Users.FindOne(ctx, bson.M{"email": email}).Decode(&u); err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (d *DB) GetUserRefs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.UserRef, error) {
	refs := make(map[primitive.ObjectID]*models.UserRef, len(ids))
	if len(ids) == 0 {
		return refs, nil
	}

	cursor, err := d.Users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.UserRef
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	for i := range users {
		refs[users[i].ID] = &users[i]
	}
	return refs, nil
}

func (d *DB) DeleteUser(ctx context.Context, id primitive.ObjectID) error {
	_, err := d.Users.DeleteOne(ctx, byID(id))
	return err
}
