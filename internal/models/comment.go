package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MaxCommentLength = 500
	AnonymousName    = "Anonymous"
)

// Comment is a user remark attached to a daily summary (summary_date is YYYY-MM-DD).
type Comment struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	SummaryDate string             `bson:"summary_date" json:"summary_date"`
	UserID      string             `bson:"user_id" json:"user_id"`
	UserName    string             `bson:"user_name" json:"user_name"`
	UserEmail   string             `bson:"user_email,omitempty" json:"user_email,omitempty"`
	Content     string             `bson:"content" json:"content"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}
