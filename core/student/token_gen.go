package student

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base32"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Token purposes. A token minted for one purpose never verifies for another.
const (
	purposeEmailVerification = "email-verification"
	purposePasswordReset     = "password-reset"
)

var (
	salt    = []byte("legacybuilder.backend.core.student.token_gen")
	nowFunc = time.Now // mockable

	// set at service init
	secretKey                 []byte
	verificationTimeoutDelta  time.Duration
	passwordResetTimeoutDelta time.Duration

	// errors
	errInvalidToken = errors.New("invalid token")
	errTokenExpired = errors.New("token expired")
)

// EncodeUID base64 encodes given Student ID
func EncodeUID(std Student) string {
	return base64.RawURLEncoding.EncodeToString([]byte(std.ID))
}

// decodeUID base64 decodes given UID
func decodeUID(uid string) (string, error) {
	idBytes, err := base64.RawURLEncoding.DecodeString(uid)
	if err != nil {
		return "", err
	}
	return string(idBytes), nil
}

// makeToken generates a single-use token for a given Student and purpose.
func makeToken(std Student, purpose string) (string, error) {
	return makeTokenWithTimestamp(std, purpose, numSecondsSince2001(nowFunc()))
}

// verifyToken checks that a token for a given Student and purpose is valid.
func verifyToken(std Student, token, purpose string) error {
	if token == "" {
		return errInvalidToken
	}

	parts := strings.SplitN(token, "-", 2)
	if len(parts) < 2 {
		return errInvalidToken
	}
	tsB32 := parts[0]

	data, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(tsB32)
	if err != nil {
		return errInvalidToken
	}
	ts, err := strconv.Atoi(string(data))
	if err != nil {
		return errInvalidToken
	}

	// check that token has not been tampered with
	newToken, err := makeTokenWithTimestamp(std, purpose, ts)
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare([]byte(newToken), []byte(token)) == 0 {
		return errInvalidToken
	}

	// check that the timestamp is within limit
	timeout := passwordResetTimeoutDelta
	if purpose == purposeEmailVerification {
		timeout = verificationTimeoutDelta
	}
	if time.Duration(numSecondsSince2001(time.Now())-ts)*time.Second > timeout {
		return errTokenExpired
	}
	return nil
}

func makeTokenWithTimestamp(std Student, purpose string, ts int) (string, error) {
	tsB32 := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString([]byte(strconv.Itoa(ts)))
	sig, err := sign(hashValue(std, purpose, ts))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s", tsB32, sig), nil
}

func numSecondsSince2001(t time.Time) int {
	ref := time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC)
	return int(t.Sub(ref) / time.Second)
}

func sign(val []byte) (string, error) {
	key := sha256.Sum256(append(salt, secretKey...))
	h := hmac.New(sha256.New, key[:])
	if _, err := h.Write(val); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil)), nil
}

// hashValue binds the token to the student's current state: changing the
// password or logging in invalidates outstanding tokens.
func hashValue(std Student, purpose string, ts int) []byte {
	var val bytes.Buffer
	val.WriteString(purpose)
	val.WriteString(std.ID)
	val.Write(std.PasswordHash)
	if !std.LastLogin.IsZero() {
		val.WriteString(std.LastLogin.String())
	}
	val.WriteString(strconv.Itoa(ts))
	return val.Bytes()
}
