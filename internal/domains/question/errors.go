package question

import "errors"

// Repository-level errors
var (
	ErrQuestionNotFound = errors.New("question not found")
	ErrAnswerNotFound   = errors.New("answer not found")
)

// Service-level (business rule) errors
var (
	// ErrAuthorNotFound means the acting account id does not resolve to
	// an existing account.
	ErrAuthorNotFound = errors.New("author not found")

	// ErrSelfAnswerForbidden: an account may not answer its own question.
	ErrSelfAnswerForbidden = errors.New("cannot answer your own question")
)
