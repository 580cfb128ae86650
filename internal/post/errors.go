package post

import "errors"

var (
	// ErrPostNotFound indicates the requested post does not exist.
	ErrPostNotFound = errors.New("post not found")
	// ErrForbidden is returned when the caller is not the post's author.
	ErrForbidden = errors.New("only the author may modify this post")
	// ErrInvalidPost rejects posts with a blank title or oversized fields.
	ErrInvalidPost = errors.New("invalid post")
	// ErrNoImage is returned when deleting the image of a post that has none.
	ErrNoImage = errors.New("post has no image")
)
