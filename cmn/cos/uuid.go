package cos

import (
	"crypto/rand"
	"fmt"

	"github.com/OneOfOne/xxhash"
	"github.com/teris-io/shortid"

	"github.com/beamtrade/beam/cmn/ratomic"
)

// Alphabet for generating short ids, chosen so that len(uuidABC) > 0x3f
// (see GenTie).
const uuidABC = "-5nZJDft6LuzsjGNpPwY7rQa39vehq4i1cV2FROo8yHSlC0BUEdWbIxMmTgKXAk_"

const (
	LenShortID = 9  // as per https://github.com/teris-io/shortid#id-length
	tooLongID  = 32 // cannot be smaller than any valid max length below
	tooLongTag = 64
)

const (
	mayOnlyContain = "may only contain letters, numbers, dashes (-), underscores (_)"
	OnlyNice       = "must be at most 32 characters and " + mayOnlyContain
	OnlyPlus       = mayOnlyContain + ", and dots (.)"
)

var (
	sid  *shortid.Shortid
	rtie ratomic.Uint64
)

func init() {
	sid = shortid.MustNew(4 /*worker*/, uuidABC, 0)
}

// InitShortID reseeds the short-id generator; callers (e.g. the daemon
// entrypoint) pass a value derived from the local node identity so
// independently-started processes don't collide.
func InitShortID(seed uint64) { sid = shortid.MustNew(4, uuidABC, seed) }

// GenUUID produces a short, URL-safe id, collision-resistant under
// concurrent generation from many goroutines - shortid.Shortid
// itself is safe for that; the leading/trailing tie-breaker here just
// avoids ids that start or end with a character some legacy consumers
// would mis-tokenize.
func GenUUID() (uuid string) {
	var h, t string
	uuid = sid.MustGenerate()
	if !isAlpha(uuid[0]) {
		tie := int(rtie.Inc())
		h = string(rune('A' + tie%26))
	}
	c := uuid[len(uuid)-1]
	if c == '-' || c == '_' {
		tie := int(rtie.Inc())
		t = string(rune('a' + tie%26))
	}
	return h + uuid + t
}

func IsValidUUID(uuid string) bool {
	return len(uuid) >= LenShortID && IsAlphaNice(uuid)
}

// CryptoRandS returns an n-byte cryptographically random alphanumeric
// string.
func CryptoRandS(n int) string {
	const alpha = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	b := make([]byte, n)
	_, _ = rand.Read(b)
	for i := range b {
		b[i] = alpha[int(b[i])%len(alpha)]
	}
	return string(b)
}

// HashBucket maps a string key to one of n buckets, or to 0 when n <= 0.
func HashBucket(key string, n int) int {
	if n <= 0 {
		return 0
	}
	return int(xxhash.ChecksumString64(key) % uint64(n))
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// IsAlphaNice reports whether s consists of letters, digits, dashes and
// underscores only, with no leading/trailing dash or underscore.
func IsAlphaNice(s string) bool {
	l := len(s)
	if l > tooLongID {
		return false
	}
	for i := 0; i < l; i++ {
		c := s[i]
		if isAlpha(c) || (c >= '0' && c <= '9') {
			continue
		}
		if c != '-' && c != '_' {
			return false
		}
		if i == 0 || i == l-1 {
			return false
		}
	}
	return true
}

// CheckAlphaPlus validates a name-like string (service name, subscription
// tag): letters, digits, dashes, underscores, and interior dots.
func CheckAlphaPlus(s, tag string) error {
	l := len(s)
	if l > tooLongTag {
		return fmt.Errorf("%s is too long: %d > %d (max length)", tag, l, tooLongTag)
	}
	for i := 0; i < l; i++ {
		c := s[i]
		if isAlpha(c) || (c >= '0' && c <= '9') || c == '-' || c == '_' {
			continue
		}
		if c != '.' {
			return fmt.Errorf("%s is invalid: %s", tag, OnlyPlus)
		}
		if i < l-1 && s[i+1] == '.' {
			return fmt.Errorf("%s is invalid: %s", tag, OnlyPlus)
		}
	}
	return nil
}

// GenTie returns a fast 3-character tie-breaker derived from a shared
// process-wide counter.
func GenTie() string {
	tie := rtie.Inc()
	b0 := uuidABC[tie&0x3f]
	b1 := uuidABC[(^tie)&0x3f]
	b2 := uuidABC[(tie>>2)&0x3f]
	return string([]byte{b0, b1, b2})
}
