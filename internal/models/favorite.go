package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Favorite keeps a copy of the article exactly as the client posted it.
type Favorite struct {
	ID        primitive.ObjectID     `bson:"_id,omitempty" json:"_id"`
	UserID    string                 `bson:"userId" json:"userId"`
	Article   map[string]interface{} `bson:"article" json:"article"`
	CreatedAt time.Time              `bson:"created_at" json:"created_at"`
}

// ArticleID returns the article's _id as posted, or "".
func (f *Favorite) ArticleID() string {
	return ArticleIDOf(f.Article)
}

// ArticleIDOf reads the "_id" key of a posted article object.
func ArticleIDOf(article map[string]interface{}) string {
	if article == nil {
		return ""
	}
	switch v := article["_id"].(type) {
	case string:
		return v
	case primitive.ObjectID:
		return v.Hex()
	}
	return ""
}
