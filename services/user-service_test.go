package services

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"
)

func TestInsertUserErrorDuplicateEmail(t *testing.T) {
	dup := mongo.WriteException{
		WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key error"}},
	}

	if err := insertUserError(dup); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken for a duplicate key violation, got %v", err)
	}
}

func TestInsertUserErrorKeepsOtherFailures(t *testing.T) {
	cause := errors.New("connection reset")

	err := insertUserError(cause)
	if errors.Is(err, ErrEmailTaken) {
		t.Fatal("unrelated failure must not report the email as taken")
	}
	if !errors.Is(err, cause) {
		t.Errorf("original failure should stay in the chain, got %v", err)
	}
}
