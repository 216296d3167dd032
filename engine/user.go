package engine

import (
	"context"
	"fmt"

	"olilab/models"
	"olilab/store"
)

// UserInput carries the editable profile fields of a user account.
type UserInput struct {
	Username   string `json:"username"`
	FullName   string `json:"fullName"`
	Email      string `json:"email"`
	LRN        string `json:"lrn"`
	GradeLevel string `json:"gradeLevel"`
	Section    string `json:"section"`
	IsAdmin    bool   `json:"isAdmin"`
}

func (in UserInput) validate() error {
	if in.Username == "" {
		return &Error{Kind: KindValidation, Entity: "user", Message: "username is required"}
	}
	if in.FullName == "" {
		return &Error{Kind: KindValidation, Entity: "user", Message: "full name is required"}
	}
	return nil
}

func usernameTaken(tx store.Tx, username, excludeID string) bool {
	for _, u := range tx.Users() {
		if u.Username == username && u.ID != excludeID {
			return true
		}
	}
	return false
}

// SignupUser creates a PENDING account and notifies admins. The account
// cannot act until an admin approves it.
func (e *Engine) SignupUser(ctx context.Context, in UserInput) (models.User, error) {
	var created models.User
	err := e.run(ctx, "signup_user", func(tx store.Tx, emit emitFn) error {
		if err := in.validate(); err != nil {
			return err
		}
		if usernameTaken(tx, in.Username, "") {
			return &Error{Kind: KindValidation, Entity: "user", Message: "username is already taken"}
		}
		created = models.User{
			ID:         e.newID(),
			Username:   in.Username,
			FullName:   in.FullName,
			Email:      in.Email,
			LRN:        in.LRN,
			GradeLevel: in.GradeLevel,
			Section:    in.Section,
			IsAdmin:    false, // signups never self-elevate
			Status:     models.UserPending,
		}
		tx.PutUser(created)
		emit(models.Notification{
			Type:          models.NotifyNewUserRequest,
			Message:       fmt.Sprintf("New user signed up: %s", created.FullName),
			RelatedUserID: created.ID,
		})
		return nil
	})
	return created, err
}

// CreateUser is the admin path: the account starts ACTIVE, no approval round.
func (e *Engine) CreateUser(ctx context.Context, in UserInput) (models.User, error) {
	var created models.User
	err := e.run(ctx, "create_user", func(tx store.Tx, _ emitFn) error {
		if err := in.validate(); err != nil {
			return err
		}
		if usernameTaken(tx, in.Username, "") {
			return &Error{Kind: KindValidation, Entity: "user", Message: "username is already taken"}
		}
		created = models.User{
			ID:         e.newID(),
			Username:   in.Username,
			FullName:   in.FullName,
			Email:      in.Email,
			LRN:        in.LRN,
			GradeLevel: in.GradeLevel,
			Section:    in.Section,
			IsAdmin:    in.IsAdmin,
			Status:     models.UserActive,
		}
		tx.PutUser(created)
		return nil
	})
	return created, err
}

// ApproveUser activates a PENDING account.
func (e *Engine) ApproveUser(ctx context.Context, id string) (models.User, error) {
	return e.decideUser(ctx, "approve_user", id, models.UserActive, "approved")
}

// DenyUser rejects a PENDING account. DENIED is terminal.
func (e *Engine) DenyUser(ctx context.Context, id string) (models.User, error) {
	return e.decideUser(ctx, "deny_user", id, models.UserDenied, "denied")
}

func (e *Engine) decideUser(ctx context.Context, op, id string, status models.UserStatus, verb string) (models.User, error) {
	var updated models.User
	err := e.run(ctx, op, func(tx store.Tx, emit emitFn) error {
		u, ok := tx.User(id)
		if !ok {
			return notFound("user", id)
		}
		if u.Status != models.UserPending {
			return invalidTransition("user", id, "only pending accounts can be decided")
		}
		u.Status = status
		tx.PutUser(u)
		emit(models.Notification{
			Type:          models.NotifyAccountStatus,
			Message:       fmt.Sprintf("Account for %s was %s.", u.FullName, verb),
			RelatedUserID: u.ID,
		})
		updated = u
		return nil
	})
	return updated, err
}

// EditUser updates profile fields. Account status never changes here.
func (e *Engine) EditUser(ctx context.Context, id string, in UserInput) (models.User, error) {
	var updated models.User
	err := e.run(ctx, "edit_user", func(tx store.Tx, _ emitFn) error {
		if err := in.validate(); err != nil {
			return err
		}
		u, ok := tx.User(id)
		if !ok {
			return notFound("user", id)
		}
		if usernameTaken(tx, in.Username, id) {
			return &Error{Kind: KindValidation, Entity: "user", ID: id, Message: "username is already taken"}
		}
		u.Username = in.Username
		u.FullName = in.FullName
		u.Email = in.Email
		u.LRN = in.LRN
		u.GradeLevel = in.GradeLevel
		u.Section = in.Section
		u.IsAdmin = in.IsAdmin
		tx.PutUser(u)
		updated = u
		return nil
	})
	return updated, err
}

// DeleteUser removes an account. The last remaining admin can never be
// deleted, regardless of loan state; anyone holding open borrow records is
// also protected.
func (e *Engine) DeleteUser(ctx context.Context, id string) error {
	return e.run(ctx, "delete_user", func(tx store.Tx, _ emitFn) error {
		u, ok := tx.User(id)
		if !ok {
			return notFound("user", id)
		}
		if u.IsAdmin {
			admins := 0
			for _, other := range tx.Users() {
				if other.IsAdmin {
					admins++
				}
			}
			if admins <= 1 {
				return &Error{
					Kind: KindLastAdminProtected, Entity: "user", ID: id,
					Message: "cannot delete the last remaining admin",
				}
			}
		}
		for _, l := range tx.Logs() {
			if l.UserID == id && l.Outstanding() {
				return &Error{
					Kind: KindOutstandingLoans, Entity: "user", ID: id,
					Message: "user has borrow records that are not yet returned or denied",
				}
			}
		}
		tx.DeleteUser(id)
		return nil
	})
}
