package domain

// VoteType is the closed set of vote actions a client can submit.
type VoteType string

const (
	VoteUpvote   VoteType = "upvote"
	VoteDownvote VoteType = "downvote"
)

// Valid reports whether v is one of the known vote types.
func (v VoteType) Valid() bool {
	return v == VoteUpvote || v == VoteDownvote
}

// Meme represents a stored meme: an image (base64 text), its caption, the
// source URL when the image was fetched rather than uploaded, and the vote
// count. Image and caption are always non-empty after a successful creation;
// upvotes never goes below zero.
type Meme struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	URL     string `gorm:"type:text" json:"url"`
	Caption string `gorm:"type:text;not null" json:"caption"`
	Upvotes int    `gorm:"not null;default:0;check:upvotes >= 0" json:"upvotes"`
	Image   string `gorm:"type:text;not null" json:"image"`
}

// TableName returns the database table name for Meme.
func (Meme) TableName() string {
	return "memes"
}
