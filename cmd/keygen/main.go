package main

import (
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"log"

	"observer-console.backend/pkg/crypto"
)

var randRead = rand.Read

func main() {
	kind := flag.String("kind", "all", "what to generate: field-key, webhook-secret or all")
	secretLen := flag.Int("secret-bytes", 32, "random bytes in the webhook secret")
	flag.Parse()

	if *kind != "all" && *kind != "field-key" && *kind != "webhook-secret" {
		log.Fatalf("invalid kind: %s (allowed: field-key, webhook-secret, all)", *kind)
	}
	if *secretLen < 16 {
		log.Fatalf("invalid secret-bytes: %d (minimum 16)", *secretLen)
	}

	if *kind != "webhook-secret" {
		key, keyID, err := generateFieldKey()
		if err != nil {
			log.Fatalf("failed to generate field key: %v", err)
		}
		fmt.Printf("FIELD_ENCRYPTION_KEY=%s # key id %s\n", key, keyID)
	}
	if *kind != "field-key" {
		secret, err := generateRandomHex(*secretLen)
		if err != nil {
			log.Fatalf("failed to generate webhook secret: %v", err)
		}
		fmt.Printf("VERIFICATION_WEBHOOK_SECRET=%s\n", secret)
	}
}

// generateFieldKey returns a master key the keyring accepts and its key id
func generateFieldKey() (string, string, error) {
	key, err := generateRandomHex(32)
	if err != nil {
		return "", "", err
	}
	keyring, err := crypto.NewKeyring(key)
	if err != nil {
		return "", "", err
	}
	return key, keyring.ActiveKeyID(), nil
}

func generateRandomHex(nBytes int) (string, error) {
	b := make([]byte, nBytes)
	if _, err := randRead(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
