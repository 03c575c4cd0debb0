package cms

// Event names fired around structural mutations. Every mutating service
// operation notifies the "before" event inside the transaction prior to
// writing and the "after" event once the writes are done. Listeners
// must not mutate tree state from inside a notification.
const (
	EventCategoryBeforeAdd    = "category.before_add"
	EventCategoryAdded        = "category.added"
	EventCategoryBeforeEdit   = "category.before_edit"
	EventCategoryEdited       = "category.edited"
	EventCategoryBeforeMove   = "category.before_move"
	EventCategoryMoved        = "category.moved"
	EventCategoryBeforeDelete = "category.before_delete"
	EventCategoryDeleted      = "category.deleted"

	EventArticleBeforeAdd    = "article.before_add"
	EventArticleAdded        = "article.added"
	EventArticleBeforeEdit   = "article.before_edit"
	EventArticleEdited       = "article.edited"
	EventArticleBeforeMove   = "article.before_move"
	EventArticleMoved        = "article.moved"
	EventArticleBeforeCopy   = "article.before_copy"
	EventArticleCopied       = "article.copied"
	EventArticleBeforeDelete = "article.before_delete"
	EventArticleDeleted      = "article.deleted"
	EventArticleTouched      = "article.touched"
	EventArticleRestored     = "article.restored"

	EventSliceBeforeAdd    = "slice.before_add"
	EventSliceAdded        = "slice.added"
	EventSliceBeforeEdit   = "slice.before_edit"
	EventSliceEdited       = "slice.edited"
	EventSliceBeforeMove   = "slice.before_move"
	EventSliceMoved        = "slice.moved"
	EventSliceBeforeDelete = "slice.before_delete"
	EventSliceDeleted      = "slice.deleted"
)
