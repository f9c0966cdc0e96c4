// Package tracking generates opaque pitch-tracking tokens and renders them
// into outgoing email bodies as an invisible beacon pixel.
package tracking

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// transparentPNGBase64 is a fixed 1x1 transparent PNG. The beacon endpoint
// always serves these exact bytes so the response never reveals whether a
// token resolved.
const transparentPNGBase64 = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNk+M9QDwADhgGAWjR9awAAAABJRU5ErkJggg=="

// TransparentPNG holds the decoded 1x1 transparent PNG bytes.
var TransparentPNG = func() []byte {
	b, err := base64.StdEncoding.DecodeString(transparentPNGBase64)
	if err != nil {
		panic(err)
	}
	return b
}()

// NewToken returns a globally unique opaque tracking token.
func NewToken() string {
	return uuid.New().String()
}

// PixelURL builds the beacon URL for a token.
func PixelURL(baseURL, token string) string {
	return fmt.Sprintf("%s/track/pixel/%s.png", strings.TrimRight(baseURL, "/"), token)
}

// EmbedPixel appends an invisible beacon image to the end of an HTML body.
// It is a pure transform and never alters existing markup; callers must
// invoke it exactly once per send or the mail carries multiple beacons.
func EmbedPixel(body, token, baseURL string) string {
	tag := fmt.Sprintf(`<img src="%s" width="1" height="1" style="display:none;" alt="" />`,
		PixelURL(baseURL, token))
	return body + tag
}
