// Package fingerprint derives the content-addressed cache key for a
// derivative request and verifies the optional HMAC request token.
package fingerprint

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"pixgate/params"
)

// Fingerprint is the 64-bit non-cryptographic hash used to shard and
// name cache entries. It is derived from the normalized request
// parameters, independent of the HMAC signing key.
type Fingerprint uint64

// String renders the fingerprint as a decimal digit string, the way the
// cache layer shards it into nested directories — the first six digits
// become three two-digit path segments.
func (f Fingerprint) String() string {
	return strconv.FormatUint(uint64(f), 10)
}

// Of computes the fingerprint of a derivative request's parameters. It
// deliberately excludes Path — path hashing is a separate, stable key
// used to name the on-disk cache file, kept apart from the parameter
// fingerprint: two different source files requesting identical
// transforms share the same shard directories and differ only by file
// name.
func Of(req params.DerivativeRequest) Fingerprint {
	h := xxhash.New()
	fmt.Fprintf(h, "w=%s;h=%s;q=%s;crop=%s;aspect=%g;thumb=%d,%d;orig=%t;rot=%d;bg=%s;fmt=%s",
		uint16OrEmpty(req.Width), uint16OrEmpty(req.Height), qualityString(req.Quality),
		cropString(req.Crop), req.Aspect, req.Thumbnail.Page, req.Thumbnail.DPI,
		req.Original, req.Rotate, backgroundString(req.Background), req.Format)
	return Fingerprint(h.Sum64())
}

// PathHash hashes the source path alone, used as the cache filename stem
// the same way the upstream converter names its derivative files.
func PathHash(path string) string {
	return strconv.FormatUint(xxhash.Sum64String(path), 10)
}

func uint16OrEmpty(v *uint16) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(int(*v))
}

func qualityString(q params.Quality) string {
	if !q.IsCustom {
		return "auto"
	}
	return strconv.Itoa(int(q.Custom))
}

func cropString(c *params.Crop) string {
	if c == nil {
		return ""
	}
	return fmt.Sprintf("%d/%v/%v/%d/%d/%d", c.AspectRatio.Kind, c.Width, c.Height, c.Gravity, c.OffsetX, c.OffsetY)
}

func backgroundString(bg *params.Background) string {
	if bg == nil {
		return ""
	}
	return fmt.Sprintf("%d,%d,%d,%d", bg.R, bg.G, bg.B, bg.A)
}

// VerifyToken re-derives the signing string from path and query (every
// key except "token", sorted) and checks it against the caller-supplied
// HMAC-SHA256 hex token using a constant-time comparison. A missing key
// disables verification entirely (no KEY configured means the deployment
// does not require signed requests).
func VerifyToken(key, path, token string, query url.Values) bool {
	if key == "" {
		return true
	}
	if token == "" {
		return false
	}

	signingString := signingString(path, query)

	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(signingString))
	expected := mac.Sum(nil)

	decoded, err := hex.DecodeString(token)
	if err != nil {
		return false
	}

	return subtle.ConstantTimeCompare(expected, decoded) == 1
}

func signingString(path string, query url.Values) string {
	keys := make([]string, 0, len(query))
	for k := range query {
		if k == "token" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+query.Get(k))
	}

	return path + "?" + strings.Join(pairs, "&")
}
