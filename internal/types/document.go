package types

import "time"

// Document is the latest persisted content for one (Source, URLNorm).
type Document struct {
	Source           string    `bson:"source"`
	URLNorm          string    `bson:"url_norm"`
	RawPayload        string    `bson:"raw_payload,omitempty"`
	ParsedText        string    `bson:"parsed_text"`
	ContentHash       string    `bson:"content_hash"`
	HTTPETag          string    `bson:"http_etag,omitempty"`
	HTTPLastModified  string    `bson:"http_last_modified,omitempty"`
	StatusCode        int       `bson:"status_code"`
	WordCount         int       `bson:"word_count"`
	FetchedAt         time.Time `bson:"fetched_at"`
	CreatedAt         time.Time `bson:"created_at"`
	UpdatedAt         time.Time `bson:"updated_at"`
}
