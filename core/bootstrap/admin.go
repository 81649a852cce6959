// Package bootstrap seeds the data a fresh install needs before first login.
package bootstrap

import (
	"context"

	"campus-soporte/config"
	"campus-soporte/core/auth"
	"campus-soporte/core/store"
	"campus-soporte/core/utils"
)

// EnsureDefaultAdmin creates the configured admin account when the users
// table is empty. With no configured password a random one is generated and
// printed once, so a fresh install is never left without access.
func EnsureDefaultAdmin(ctx context.Context, users store.UsersStore, cfg *config.AppConfig, logger *utils.Logger) error {
	n, err := users.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	password := cfg.Admin.Password
	generated := false
	if password == "" {
		password, err = utils.RandString(12)
		if err != nil {
			return err
		}
		generated = true
	}
	ph, err := auth.HashPassword(password, cfg.Pepper)
	if err != nil {
		return err
	}
	u := &store.User{
		Username:     cfg.Admin.Username,
		FullName:     "Administrador",
		PasswordHash: ph.Hash,
		Salt:         ph.Salt,
		Active:       true,
	}
	if _, err := users.Create(ctx, u, []string{"admin"}); err != nil {
		return err
	}
	if generated {
		logger.Printf("created default admin %q with password %q - change it after first login", u.Username, password)
	} else {
		logger.Printf("created default admin %q", u.Username)
	}
	return nil
}
