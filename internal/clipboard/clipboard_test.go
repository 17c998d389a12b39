package clipboard

import (
	"bytes"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOSC52FallbackCarriesExactString(t *testing.T) {
	req := require.New(t)
	shareURL := "https://share.example.com/t/t-42"

	var buf bytes.Buffer
	req.NoError(copyOSC52(&buf, shareURL))

	// OSC52 payload is base64 between the last ';' and the terminator
	out := buf.String()
	start := bytes.LastIndexByte([]byte(out), ';')
	req.Greater(start, -1)
	payload := out[start+1:]
	for _, term := range []string{"\x1b\\", "\a"} {
		if idx := bytes.Index([]byte(payload), []byte(term)); idx >= 0 {
			payload = payload[:idx]
		}
	}
	decoded, err := base64.StdEncoding.DecodeString(payload)
	req.NoError(err)
	req.Equal(shareURL, string(decoded))
}
