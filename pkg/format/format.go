package format

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"swift-transfer/internal/api"
)

func Size(n int64) string {
	if n < 0 {
		return "0 B"
	}
	return humanize.Bytes(uint64(n))
}

// Expiry renders an expiry timestamp for list and detail views.
func Expiry(t api.FlexTime) string {
	switch {
	case t.IsZero():
		return "never expires"
	case t.Time().Before(time.Now()):
		return "expired"
	default:
		return fmt.Sprintf("expires %s", humanize.Time(t.Time()))
	}
}
