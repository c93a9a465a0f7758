package database

import (
	"context"
	"time"

	"devconnector/models"
	"devconnector/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func (d *DB) GetProfileByUser(ctx context.Context, userID primitive.ObjectID) (*models.Profile, error) {
	var p models.Profile
	if err := d.Profiles.FindOne(ctx, bson.M{"user": userID}).Decode(&p); err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (d *DB) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	cursor, err := d.Profiles.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	profiles := []models.Profile{}
	if err := cursor.All(ctx, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

func (d *DB) UpsertProfile(ctx context.Context, userID primitive.ObjectID, f repository.ProfileFields) (*models.Profile, error) {
	social := f.Social
	if social == nil {
		social = models.Social{}
	}

	update := bson.M{
		"$set": bson.M{
			"company":        f.Company,
			"location":       f.Location,
			"website":        f.Website,
			"bio":            f.Bio,
			"skills":         f.Skills,
			"status":         f.Status,
			"githubusername": f.GithubUsername,
			"social":         social,
		},
		"$setOnInsert": bson.M{
			"experience": bson.A{},
			"education":  bson.A{},
			"date":       time.Now().UTC(),
		},
	}
	opts := after().SetUpsert(true)

	var p models.Profile
	err := d.Profiles.FindOneAndUpdate(ctx, bson.M{"user": userID}, update, opts).Decode(&p)
	if mongo.IsDuplicateKeyError(err) {
		// A concurrent upsert inserted first; the unique index turned ours into a
		// duplicate, so the retry matches the existing document and updates it.
		err = d.Profiles.FindOneAndUpdate(ctx, bson.M{"user": userID}, update, opts).Decode(&p)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (d *DB) DeleteProfileByUser(ctx context.Context, userID primitive.ObjectID) error {
	_, err := d.Profiles.DeleteOne(ctx, bson.M{"user": userID})
	return err
}

func (d *DB) PrependExperience(ctx context.Context, userID primitive.ObjectID, e models.Experience) (*models.Profile, error) {
	return d.prepend(ctx, userID, "experience", e)
}

func (d *DB) RemoveExperience(ctx context.Context, userID, expID primitive.ObjectID) (*models.Profile, error) {
	return d.pull(ctx, userID, "experience", expID)
}

func (d *DB) PrependEducation(ctx context.Context, userID primitive.ObjectID, e models.Education) (*models.Profile, error) {
	return d.prepend(ctx, userID, "education", e)
}

func (d *DB) RemoveEducation(ctx context.Context, userID, eduID primitive.ObjectID) (*models.Profile, error) {
	return d.pull(ctx, userID, "education", eduID)
}

func (d *DB) prepend(ctx context.Context, userID primitive.ObjectID, field string, entry interface{}) (*models.Profile, error) {
	update := bson.M{"$push": bson.M{field: bson.M{
		"$each":     bson.A{entry},
		"$position": 0,
	}}}

	var p models.Profile
	if err := d.Profiles.FindOneAndUpdate(ctx, bson.M{"user": userID}, update, after()).Decode(&p); err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// pull removes the entry only when it exists, so a miss leaves the document untouched.
func (d *DB) pull(ctx context.Context, userID primitive.ObjectID, field string, id primitive.ObjectID) (*models.Profile, error) {
	filter := bson.M{"user": userID, field + "._id": id}
	update := bson.M{"$pull": bson.M{field: bson.M{"_id": id}}}

	var p models.Profile
	if err := d.Profiles.FindOneAndUpdate(ctx, filter, update, after()).Decode(&p); err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}
