package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"observer-console.backend/pkg/signature"
)

var (
	printfFn = fmt.Printf
	fatalfFn = log.Fatalf
	stdin    io.Reader = os.Stdin
)

// readBody returns the file contents, or stdin when path is empty or "-"
func readBody(path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

func resolveSecret(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv("VERIFICATION_WEBHOOK_SECRET")
}

func main() {
	secretFlag := flag.String("secret", "", "webhook secret (defaults to VERIFICATION_WEBHOOK_SECRET)")
	file := flag.String("file", "-", "payload file, - for stdin")
	header := flag.String("header", "X-Signature", "signature header name to print")
	flag.Parse()

	secret := resolveSecret(*secretFlag)
	if secret == "" {
		fatalfFn("no secret: pass -secret or set VERIFICATION_WEBHOOK_SECRET")
		return
	}

	body, err := readBody(*file)
	if err != nil {
		fatalfFn("Failed to read payload: %v", err)
		return
	}

	printfFn("%s: %s\n", *header, signature.Sign(secret, body))
}
