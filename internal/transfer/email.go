package transfer

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"

	"swift-transfer/internal/api"
)

var validate = validator.New()

// TransferIDFromShareURL extracts the transfer id as the last non-empty
// path segment of a share URL.
func TransferIDFromShareURL(shareURL string) (string, error) {
	u, err := url.Parse(shareURL)
	if err != nil {
		return "", fmt.Errorf("parse share URL: %w", err)
	}
	segs := strings.Split(strings.Trim(u.Path, "/"), "/")
	id := segs[len(segs)-1]
	if id == "" {
		return "", fmt.Errorf("share URL %q carries no transfer id", shareURL)
	}
	return id, nil
}

// EmailShareLink mails an already-produced share URL to a recipient.
// Independent of the upload sequence; callers may retry it freely.
func EmailShareLink(ctx context.Context, c *api.Client, shareURL, to, message string) error {
	if err := validate.Var(to, "required,email"); err != nil {
		return fmt.Errorf("invalid recipient address %q", to)
	}
	id, err := TransferIDFromShareURL(shareURL)
	if err != nil {
		return err
	}
	return c.SendEmail(ctx, id, to, message)
}
