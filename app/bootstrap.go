package app

import (
	"context"
	"log"

	"olilab/engine"
	"olilab/store"
)

// BootstrapFirstAdmin creates an ACTIVE admin account on first start so the
// approval workflows have someone to act. No-op when an admin already exists
// or no bootstrap username is configured.
func BootstrapFirstAdmin(ctx context.Context, cfg Config, st store.Store, eng *engine.Engine) {
	if cfg.BootstrapUsername == "" {
		return
	}
	hasAdmin := false
	if err := st.View(ctx, func(v store.View) error {
		for _, u := range v.Users() {
			if u.IsAdmin {
				hasAdmin = true
				break
			}
		}
		return nil
	}); err != nil {
		log.Printf("bootstrap: check admins: %v", err)
		return
	}
	if hasAdmin {
		return
	}
	u, err := eng.CreateUser(ctx, engine.UserInput{
		Username: cfg.BootstrapUsername,
		FullName: cfg.BootstrapFullName,
		Email:    cfg.BootstrapEmail,
		IsAdmin:  true,
	})
	if err != nil {
		log.Printf("bootstrap: create admin: %v", err)
		return
	}
	log.Printf("[BOOTSTRAP] No admin found, created admin %s (%s)", u.Username, u.ID)
}
