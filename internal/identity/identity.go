// Package identity derives the shared name that scopes both leadership and
// the message channel to one logical application per user.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"os/user"
	"strings"
	"unicode/utf8"

	"github.com/Iron-Ham/singleton/internal/errors"
)

// ChannelSuffix is appended to the identity name to form the channel name.
const ChannelSuffix = ":SingleInstanceIPCChannel"

// Identity is the per-user, per-application name shared by every instance of
// the same application. It is derived once per process and never persisted.
type Identity struct {
	token string
	user  string
}

// New derives an Identity from a caller-chosen token and the current user.
func New(token string) (Identity, error) {
	return NewForUser(token, CurrentUser())
}

// NewForUser derives an Identity for an explicit user name.
func NewForUser(token, userName string) (Identity, error) {
	if strings.TrimSpace(token) == "" {
		return Identity{}, errors.NewValidationError("identity token cannot be empty").
			WithField("token").
			WithCause(errors.ErrInvalidIdentity)
	}
	return Identity{token: token, user: userName}, nil
}

// CurrentUser returns the login name of the user running this process.
// It falls back to $USER / $USERNAME when the user database is unavailable.
func CurrentUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	if name := os.Getenv("USER"); name != "" {
		return name
	}
	return os.Getenv("USERNAME")
}

// Token returns the caller-chosen token.
func (id Identity) Token() string { return id.token }

// User returns the user name baked into the identity.
func (id Identity) User() string { return id.user }

// Name returns the leadership (mutex) name, "<token>:<user>". Colons and
// backslashes in the token are backslash-escaped, so the first bare colon
// always ends the token and distinct (token, user) pairs never share a name.
func (id Identity) Name() string {
	return tokenEscaper.Replace(id.token) + ":" + id.user
}

var tokenEscaper = strings.NewReplacer(`\`, `\\`, ":", `\:`)

// ChannelName returns the message channel name.
func (id Identity) ChannelName() string {
	return id.Name() + ChannelSuffix
}

// String implements fmt.Stringer.
func (id Identity) String() string {
	return id.Name()
}

// MaxFileKeyLen bounds FileKey results, leaving room for a suffix such as
// ".channel" within the 255-byte limit most filesystems put on a path
// element.
const MaxFileKeyLen = 200

// FileKey converts a name into something safe to use as a single path
// element on every platform. Distinct names map to distinct keys. Keys that
// would exceed MaxFileKeyLen are cut short and end in "-" plus the hex
// SHA-256 of the whole name.
func FileKey(name string) string {
	key := escapeName(name)
	if len(key) <= MaxFileKeyLen {
		return key
	}
	sum := sha256.Sum256([]byte(name))
	digest := hex.EncodeToString(sum[:])
	return key[:MaxFileKeyLen-len(digest)-1] + "-" + digest
}

func escapeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for i := 0; i < len(name); {
		r, size := utf8.DecodeRuneInString(name[i:])
		switch {
		case r == utf8.RuneError && size == 1:
			// A stray byte, "__<hex>_", so it never collides with a rune.
			b.WriteString("_" + escapeRune(rune(name[i])))
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		default:
			// '_' is escaped too so the mapping stays injective.
			b.WriteString(escapeRune(r))
		}
		i += size
	}
	return b.String()
}

func escapeRune(r rune) string {
	const hex = "0123456789abcdef"
	var buf [10]byte
	n := len(buf)
	for v := uint32(r); ; v >>= 4 {
		n--
		buf[n] = hex[v&0xf]
		if v < 0x10 {
			break
		}
	}
	return "_" + string(buf[n:]) + "_"
}
