package auth

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"swift-transfer/internal/api"
	"swift-transfer/internal/config"
	"swift-transfer/internal/logger"
	"swift-transfer/internal/store"
)

// Login authenticates against the backend and persists the token to the
// token file and the local cache db.
func Login(ctx context.Context, c *api.Client, email, password string) (string, error) {
	token, err := c.Login(ctx, email, password)
	if err != nil {
		return "", err
	}
	if db := store.Get(); db != nil {
		_ = db.Create(&store.Token{Value: token}).Error
	}
	if err := saveToken(token); err != nil {
		return "", err
	}
	SetCurrentToken(token)
	logger.Infof("signed in as %s", email)
	return token, nil
}

func saveToken(token string) error {
	path := config.TokenFilePath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir token dir: %w", err)
	}
	return os.WriteFile(path, []byte(token), 0o600)
}

// LoadToken reads a previously persisted token from disk into the store.
// Missing file means signed out, not an error the caller has to handle.
func LoadToken() string {
	b, err := os.ReadFile(config.TokenFilePath())
	if err != nil {
		return ""
	}
	SetCurrentToken(string(b))
	return string(b)
}

// Logout clears the in-memory token, the token file and the cached db rows.
func Logout() {
	SetCurrentToken("")
	_ = os.Remove(config.TokenFilePath())
	if db := store.Get(); db != nil {
		_ = db.Where("1 = 1").Delete(&store.Token{}).Error
	}
}
