package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainProgram = "bfi/program/v1"
	DomainOutput  = "bfi/output/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ProgramID computes the content-addressed ID of cleaned code.
// Two sources that clean to the same code share an ID.
func ProgramID(code string) (string, error) {
	canonical, err := MarshalCanonical(map[string]any{
		"code":       code,
		"ir_version": IRVersion,
	})
	if err != nil {
		return "", fmt.Errorf("ProgramID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainProgram, canonical), nil
}

// OutputDigest hashes a sequence of output values.
// Used to compare runs without storing their full output twice.
func OutputDigest(values []int) (string, error) {
	arr := make([]any, len(values))
	for i, v := range values {
		arr[i] = v
	}
	canonical, err := MarshalCanonical(arr)
	if err != nil {
		return "", fmt.Errorf("OutputDigest: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainOutput, canonical), nil
}

// MustProgramID is like ProgramID but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustProgramID(code string) string {
	id, err := ProgramID(code)
	if err != nil {
		panic(err)
	}
	return id
}
