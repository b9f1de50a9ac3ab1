package arkham

// sign.go — firma de requests a la API de balances.
//
//   h1        = sha256(path + ":" + timestamp + ":" + secret)
//   X-Payload = sha256(secret + ":" + h1)
//
// Ambos hashes en hex minúsculas. El servidor recalcula la misma cadena y
// valida que X-Timestamp sea reciente.

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"
)

// Payload calcula la firma X-Payload para path y timestamp (segundos unix).
func Payload(path, timestamp, secret string) string {
	first := sha256Hex(path + ":" + timestamp + ":" + secret)
	return sha256Hex(secret + ":" + first)
}

// Timestamp formatea t como segundos unix, igual que X-Timestamp.
func Timestamp(t time.Time) string {
	return strconv.FormatInt(t.Unix(), 10)
}

func sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
