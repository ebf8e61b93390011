package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Article is one news item as delivered by the NEWS_SENTIMENT feed.
// Articles are written by ingestion only and never modified afterwards.
type Article struct {
	ID                    primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Title                 string             `bson:"title" json:"title"`
	URL                   string             `bson:"url" json:"url"`
	TimePublished         string             `bson:"time_published" json:"time_published"`
	Authors               []string           `bson:"authors" json:"authors"`
	Summary               string             `bson:"summary" json:"summary"`
	BannerImage           string             `bson:"banner_image,omitempty" json:"banner_image,omitempty"`
	Source                string             `bson:"source" json:"source"`
	CategoryWithinSource  string             `bson:"category_within_source,omitempty" json:"category_within_source,omitempty"`
	SourceDomain          string             `bson:"source_domain,omitempty" json:"source_domain,omitempty"`
	Topics                []TopicRelevance   `bson:"topics" json:"topics"`
	OverallSentimentScore float64            `bson:"overall_sentiment_score" json:"overall_sentiment_score"`
	OverallSentimentLabel string             `bson:"overall_sentiment_label" json:"overall_sentiment_label"`
	TickerSentiment       []TickerSentiment  `bson:"ticker_sentiment" json:"ticker_sentiment"`
}

type TopicRelevance struct {
	Topic          string `bson:"topic" json:"topic"`
	RelevanceScore string `bson:"relevance_score" json:"relevance_score"`
}

type TickerSentiment struct {
	Ticker               string `bson:"ticker" json:"ticker"`
	RelevanceScore       string `bson:"relevance_score" json:"relevance_score"`
	TickerSentimentScore string `bson:"ticker_sentiment_score" json:"ticker_sentiment_score"`
	TickerSentimentLabel string `bson:"ticker_sentiment_label" json:"ticker_sentiment_label"`
}
