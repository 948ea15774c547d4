// Package policy holds the post visibility and ownership rules.
//
// The scalar predicates here are the source of truth; the post repository
// pushes the same conditions into SQL for bulk listings. The two forms
// must stay pointwise equivalent (see the tests).
package policy

import (
	"time"

	"chronicle/internal/models"
)

// AnonymousID is the viewer ID used for unauthenticated requests.
// No stored user ever has ID 0.
const AnonymousID uint = 0

// PubliclyVisible reports whether the post is visible to viewers other
// than its author at the given instant: it must be published, its
// publication date must not be in the future, and its category (when it
// has one) must be published.
func PubliclyVisible(post *models.Post, now time.Time) bool {
	if !post.Published {
		return false
	}
	if post.PubDate.After(now) {
		return false
	}
	if post.Category != nil && !post.Category.Published {
		return false
	}
	return true
}

// Visible reports whether viewerID may see the post. The author always
// sees their own posts regardless of publication state.
func Visible(post *models.Post, viewerID uint, now time.Time) bool {
	if viewerID != AnonymousID && post.UserID == viewerID {
		return true
	}
	return PubliclyVisible(post, now)
}

// CanMutate reports whether actorID may edit or delete the entity owned
// by ownerID. Only the author mutates; there are no moderator overrides.
func CanMutate(ownerID, actorID uint) bool {
	return actorID != AnonymousID && ownerID == actorID
}
