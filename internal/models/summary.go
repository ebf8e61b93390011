package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Summary is the generated digest for one day. Date holds the time_published
// value of the first ingested article, so it always starts with YYYYMMDD.
type Summary struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Date            string             `bson:"date" json:"date"`
	CombinedSummary string             `bson:"combined_summary" json:"combined_summary"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
}
