package protocol

import (
	"crypto/sha1"
)

// MysqlNativePassword is the plugin name this client speaks (spec.md §4.3).
// Other plugins (caching_sha2_password, etc.) are out of scope: spec.md
// treats authentication as a black-box native-password SHA1 function,
// never as a pluggable negotiation with the server.
const MysqlNativePassword = "mysql_native_password"

// ScramblePassword computes the mysql_native_password response:
//
//	SHA1(password) XOR SHA1(challenge ++ SHA1(SHA1(password)))
//
// Returns nil for an empty password, matching the server's convention that
// an empty auth response means "no password".
//
// Only crypto/sha1 from the standard library is used here: spec.md scopes
// authentication to this single named hash, so there is no serving role
// for a general-purpose crypto or hashing library from the example pack.
func ScramblePassword(challenge []byte, password string) []byte {
	if len(password) == 0 {
		return nil
	}

	sha1pwd := sha1.Sum([]byte(password))
	sha1sha1pwd := sha1.Sum(sha1pwd[:])

	h := sha1.New()
	h.Write(challenge)
	h.Write(sha1sha1pwd[:])
	stage := h.Sum(nil)

	scramble := make([]byte, len(stage))
	for i := range scramble {
		scramble[i] = stage[i] ^ sha1pwd[i]
	}
	return scramble
}
