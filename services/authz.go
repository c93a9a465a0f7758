package services

import "go.mongodb.org/mongo-driver/bson/primitive"

// ActorOwns is the single ownership check run before every owner-restricted mutation.
func ActorOwns(owner, actor primitive.ObjectID) error {
	if owner.IsZero() || owner != actor {
		return newError(ErrUnauthorized, "User not authorized")
	}
	return nil
}

// actorID resolves the id the auth guard put on the request.
func actorID(hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, newError(ErrUnauthorized, "Token is not valid")
	}
	return id, nil
}

// documentID parses a path identifier; a malformed key reads as a missing document.
func documentID(hex, notFoundMsg string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, newError(ErrNotFound, notFoundMsg)
	}
	return id, nil
}
