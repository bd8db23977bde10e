package resume

import "context"

// TextProvider hands back the plain text of a user's primary résumé.
// Absence is a normal outcome, not an error: callers omit the résumé
// context and carry on.
type TextProvider interface {
	PrimaryText(ctx context.Context, userID uint) (text string, ok bool, err error)
}
