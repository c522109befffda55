package domain

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post represents a blog post document
type Post struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Title string             `bson:"title" json:"title"`
	Body  string             `bson:"body" json:"body"`
}

// PostInput is the client supplied payload for create and update
type PostInput struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Validate checks that both title and body are present
func (in PostInput) Validate() error {
	var missing []string
	if strings.TrimSpace(in.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(in.Body) == "" {
		missing = append(missing, "body")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing, Reason: "required"}
	}
	return nil
}

// ParseID converts the external hex representation into an ObjectID
func ParseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, &ValidationError{
			Fields: []string{"id"},
			Reason: "is not a valid identifier",
			Err:    ErrInvalidID,
		}
	}
	return oid, nil
}
