// Command genkey generates an API key for the calling application backend.
// The key goes into the caller's configuration, the same value into
// API_KEY_SECRET on the server side.
package main

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
)

func main() {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	key := "fg_" + hex.EncodeToString(raw)
	hash := sha256.Sum256([]byte(key))

	fmt.Printf("KEY=%s\nHASH=%s\n", key, hex.EncodeToString(hash[:]))
}
