package services

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// parseID validates a client-supplied hex identifier before any store
// access. Malshaped ids fail fast with ErrInvalidID.
func parseID(hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(hex))
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return id, nil
}
