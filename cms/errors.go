package cms

import "errors"

var ErrCategoryNotFound = errors.New("category not found")
var ErrArticleNotFound = errors.New("article not found")
var ErrSliceNotFound = errors.New("slice not found")
var ErrArticleSliceNotFound = errors.New("no slice at this slot and position")
var ErrCycle = errors.New("move would create a cycle")
var ErrHasChildren = errors.New("category still has children")
var ErrPositionOutOfBounds = errors.New("slice position out of bounds")
var ErrMissingParent = errors.New("owning category no longer exists")
