package service

import "column/internal/apperr"

var (
	errBadPage  = apperr.BadRequest("page must be a positive integer")
	errBadLimit = apperr.BadRequest("limit must be a positive integer")

	errPostNotFound    = apperr.NotFound("Post not found")
	errCommentNotFound = apperr.NotFound("Comment not found")
	errUserNotFound    = apperr.NotFound("User not found")
	errForbidden       = apperr.Forbidden("Forbidden")
)
