package engine

import (
	"context"

	"olilab/models"
	"olilab/store"
)

// AddSuggestion files a member proposal for a new inventory item.
func (e *Engine) AddSuggestion(ctx context.Context, userID, itemName, category, reason string) (models.Suggestion, error) {
	var created models.Suggestion
	err := e.run(ctx, "add_suggestion", func(tx store.Tx, _ emitFn) error {
		if itemName == "" {
			return &Error{Kind: KindValidation, Entity: "suggestion", Message: "item name is required"}
		}
		if _, ok := tx.User(userID); !ok {
			return notFound("user", userID)
		}
		created = models.Suggestion{
			ID:        e.newID(),
			UserID:    userID,
			ItemName:  itemName,
			Category:  category,
			Reason:    reason,
			Status:    models.SuggestionPending,
			Timestamp: e.clock(),
		}
		tx.PutSuggestion(created)
		return nil
	})
	return created, err
}

// ApproveSuggestion flips a PENDING suggestion to APPROVED and creates the
// suggested item with the admin-chosen quantity, atomically.
func (e *Engine) ApproveSuggestion(ctx context.Context, id string, totalQuantity int) (models.Suggestion, models.Item, error) {
	var (
		updated models.Suggestion
		item    models.Item
	)
	err := e.run(ctx, "approve_suggestion", func(tx store.Tx, _ emitFn) error {
		if totalQuantity <= 0 {
			return &Error{Kind: KindValidation, Entity: "suggestion", ID: id, Message: "total quantity must be positive", Want: totalQuantity}
		}
		s, ok := tx.Suggestion(id)
		if !ok {
			return notFound("suggestion", id)
		}
		if s.Status != models.SuggestionPending {
			return invalidTransition("suggestion", id, "only pending suggestions can be decided")
		}
		s.Status = models.SuggestionApproved
		tx.PutSuggestion(s)

		item = models.Item{
			ID:                e.newID(),
			Name:              s.ItemName,
			Category:          s.Category,
			TotalQuantity:     totalQuantity,
			AvailableQuantity: totalQuantity,
		}
		tx.PutItem(item)
		updated = s
		return nil
	})
	return updated, item, err
}

// DenySuggestion flips a PENDING suggestion to DENIED and, when a reason is
// given, records it as a comment by the deciding admin, atomically.
func (e *Engine) DenySuggestion(ctx context.Context, id, reason, adminID string) (models.Suggestion, error) {
	var updated models.Suggestion
	err := e.run(ctx, "deny_suggestion", func(tx store.Tx, _ emitFn) error {
		s, ok := tx.Suggestion(id)
		if !ok {
			return notFound("suggestion", id)
		}
		if s.Status != models.SuggestionPending {
			return invalidTransition("suggestion", id, "only pending suggestions can be decided")
		}
		s.Status = models.SuggestionDenied
		tx.PutSuggestion(s)
		if reason != "" {
			if _, ok := tx.User(adminID); !ok {
				return notFound("user", adminID)
			}
			tx.PutComment(models.Comment{
				ID:           e.newID(),
				SuggestionID: id,
				UserID:       adminID,
				Text:         reason,
				Timestamp:    e.clock(),
			})
		}
		updated = s
		return nil
	})
	return updated, err
}

// AddComment appends an immutable comment to a suggestion.
func (e *Engine) AddComment(ctx context.Context, suggestionID, userID, text string) (models.Comment, error) {
	var comment models.Comment
	err := e.run(ctx, "add_comment", func(tx store.Tx, _ emitFn) error {
		if text == "" {
			return &Error{Kind: KindValidation, Entity: "suggestion", ID: suggestionID, Message: "comment text is required"}
		}
		if _, ok := tx.Suggestion(suggestionID); !ok {
			return notFound("suggestion", suggestionID)
		}
		if _, ok := tx.User(userID); !ok {
			return notFound("user", userID)
		}
		comment = models.Comment{
			ID:           e.newID(),
			SuggestionID: suggestionID,
			UserID:       userID,
			Text:         text,
			Timestamp:    e.clock(),
		}
		tx.PutComment(comment)
		return nil
	})
	return comment, err
}
