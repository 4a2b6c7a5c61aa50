package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainTask     = "skein/task/v1"
	DomainStep     = "skein/step/v1"
	DomainWorkflow = "skein/workflow/v1"
	DomainConfig   = "skein/config/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data). The null byte prevents domain/data
// boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint computes the domain-separated hash of a canonically
// marshalable value. Returns an error if v cannot be canonically marshaled.
func Fingerprint(domain string, v any) (string, error) {
	canonical, err := MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("fingerprint %s: %w", domain, err)
	}
	return hashWithDomain(domain, canonical), nil
}

// MustFingerprint is like Fingerprint but panics on error.
// Use only when inputs are known to be canonical.
func MustFingerprint(domain string, v any) string {
	fp, err := Fingerprint(domain, v)
	if err != nil {
		panic(err)
	}
	return fp
}

// StepFingerprint computes the deduplication key for a step: a hash over
// the task identity and the ordered argument identities. Identical
// fingerprints within one workflow scope always merge.
func StepFingerprint(task *Task, argNames []string, argIdentities []string) (string, error) {
	if len(argNames) != len(argIdentities) {
		return "", fmt.Errorf("step fingerprint: %d names for %d identities", len(argNames), len(argIdentities))
	}
	args := make(Array, len(argNames))
	for i := range argNames {
		args[i] = Array{String(argNames[i]), String(argIdentities[i])}
	}
	return Fingerprint(DomainStep, Object{
		"task": String(task.ID()),
		"args": args,
	})
}
