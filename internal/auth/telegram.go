// Package auth implements the authentication core of the forms backend:
// verification of Telegram Mini App init data and issuance/validation of
// short-lived session tokens derived from the verified identity.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// MaxInitDataAge is how long a signed init-data payload stays acceptable,
// measured from its auth_date.
const MaxInitDataAge = 24 * time.Hour

// Verification failures. Each maps to a rejection with no state change;
// callers never retry them automatically.
var (
	// ErrMalformedPayload is returned when init data cannot be parsed, is
	// missing its hash, or carries an unparsable user object.
	ErrMalformedPayload = errors.New("malformed init data")

	// ErrSignatureMismatch is returned when the computed HMAC does not match
	// the supplied hash.
	ErrSignatureMismatch = errors.New("init data signature mismatch")

	// ErrExpired is returned when auth_date is older than MaxInitDataAge.
	ErrExpired = errors.New("init data expired")
)

// Identity is the Telegram user proven by a verified init-data payload.
// It is never persisted; it only travels inside a session token.
type Identity struct {
	UserID       int64  `json:"id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name,omitempty"`
	Username     string `json:"username,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`
	IsPremium    bool   `json:"is_premium,omitempty"`
	PhotoURL     string `json:"photo_url,omitempty"`
}

// ResponderID renders the identity as the opaque responder key used by the
// response store (the numeric Telegram user id in decimal).
func (id Identity) ResponderID() string {
	return strconv.FormatInt(id.UserID, 10)
}

// InitData is the verified content of a Mini App payload.
type InitData struct {
	User         Identity
	AuthDate     int64
	ChatInstance string
	ChatType     string
}

// Verifier validates Telegram Mini App init data against the bot token it
// was signed with. The zero value is unusable; construct with NewVerifier.
//
// Verification is pure and deterministic given the payload and the current
// time; the clock is injectable for tests.
type Verifier struct {
	botToken string
	now      func() time.Time
}

// NewVerifier returns a Verifier bound to the given bot token.
func NewVerifier(botToken string) *Verifier {
	return &Verifier{botToken: botToken, now: time.Now}
}

// Verify checks the signature and freshness of raw init data and extracts
// the embedded user.
//
// The check must match Telegram's signing scheme bit for bit:
//  1. parse the payload as URL-query pairs and pull out "hash";
//  2. sort the remaining pairs lexicographically by key and join them as
//     "key=value" lines separated by '\n';
//  3. derive the secret key: HMAC-SHA256 over the bot token keyed with the
//     literal string "WebAppData";
//  4. the expected hash is the lowercase-hex HMAC-SHA256 of the check string
//     keyed with that derived key.
//
// The hash comparison is constant time. auth_date older than MaxInitDataAge
// is rejected with ErrExpired.
func (v *Verifier) Verify(rawInitData string) (*InitData, error) {
	values, err := url.ParseQuery(rawInitData)
	if err != nil {
		return nil, ErrMalformedPayload
	}

	suppliedHash := values.Get("hash")
	if suppliedHash == "" {
		return nil, ErrMalformedPayload
	}
	values.Del("hash")

	if !hmac.Equal([]byte(computeHash(checkString(values), v.botToken)), []byte(suppliedHash)) {
		return nil, ErrSignatureMismatch
	}

	authDate, err := strconv.ParseInt(values.Get("auth_date"), 10, 64)
	if err != nil {
		return nil, ErrMalformedPayload
	}
	if v.now().Unix()-authDate > int64(MaxInitDataAge/time.Second) {
		return nil, ErrExpired
	}

	userJSON := values.Get("user")
	if userJSON == "" {
		return nil, ErrMalformedPayload
	}
	var user Identity
	if err := json.Unmarshal([]byte(userJSON), &user); err != nil {
		return nil, ErrMalformedPayload
	}

	return &InitData{
		User:         user,
		AuthDate:     authDate,
		ChatInstance: values.Get("chat_instance"),
		ChatType:     values.Get("chat_type"),
	}, nil
}

// checkString builds the canonical data-check string: key=value pairs sorted
// lexicographically by key, joined with '\n'. Repeated keys keep their
// original order within the key group.
func checkString(values url.Values) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		for _, val := range values[k] {
			if i > 0 || b.Len() > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(k)
			b.WriteByte('=')
			b.WriteString(val)
		}
	}
	return b.String()
}

// computeHash runs the two-step HMAC chain and renders lowercase hex.
func computeHash(checkString, botToken string) string {
	kdf := hmac.New(sha256.New, []byte("WebAppData"))
	kdf.Write([]byte(botToken))
	secretKey := kdf.Sum(nil)

	mac := hmac.New(sha256.New, secretKey)
	mac.Write([]byte(checkString))
	return hex.EncodeToString(mac.Sum(nil))
}
