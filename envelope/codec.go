package envelope

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// FieldError describes a single missing or malformed envelope field.
type FieldError struct {
	Field  string
	Reason string
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Reason
}

// DecodeError reports every missing or malformed field found while decoding
// an envelope, not just the first.
type DecodeError struct {
	Fields []FieldError
}

func (e *DecodeError) Error() string {
	if len(e.Fields) == 0 {
		return "invalid envelope"
	}
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Error()
	}
	return "invalid envelope: " + strings.Join(parts, "; ")
}

func (e *DecodeError) add(field, format string, args ...any) {
	e.Fields = append(e.Fields, FieldError{Field: field, Reason: fmt.Sprintf(format, args...)})
}

// pqWire is the serialized pq-v1 envelope. All binary fields are standard
// base64 strings.
type pqWire struct {
	Version         string `json:"version"`
	Algorithm       string `json:"algorithm"`
	SecurityLevel   string `json:"securityLevel"`
	EncapsulatedKey string `json:"encapsulatedKey"`
	Ciphertext      string `json:"ciphertext"`
	Nonce           string `json:"nonce"`
	AuthTag         string `json:"authTag"`
	Timestamp       string `json:"timestamp"`
}

// legacyWire is the serialized legacy-v1 envelope.
type legacyWire struct {
	Version    string `json:"version"`
	Algorithm  string `json:"algorithm"`
	Ciphertext string `json:"ciphertext"`
}

// Classify inspects a serialized envelope and reports its format. It is a
// pure, total function: it never fails, and input that is not a JSON object
// is assumed to be a bare legacy ciphertext.
func Classify(raw []byte) Format {
	version, isObject := peekVersion(raw)
	if !isObject {
		return FormatLegacy
	}
	switch version {
	case VersionPostQuantum:
		return FormatPostQuantum
	case VersionLegacy:
		return FormatLegacy
	default:
		return FormatUnknown
	}
}

// peekVersion extracts the version discriminator from a JSON object.
// The second return is false when raw is not a JSON object at all.
func peekVersion(raw []byte) (string, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return "", false
	}

	var probe struct {
		Version string `json:"version"`
	}
	if err := json.Unmarshal(trimmed, &probe); err != nil {
		return "", false
	}
	return probe.Version, true
}

// Decode parses and validates a serialized envelope. For structured input it
// validates presence, encoding, and size of every required field for the
// detected format, reporting all problems at once via [DecodeError].
func Decode(raw []byte) (Envelope, error) {
	switch Classify(raw) {
	case FormatPostQuantum:
		return decodePostQuantum(raw)
	case FormatLegacy:
		if _, isObject := peekVersion(raw); isObject {
			return decodeLegacy(raw)
		}
		return decodeBare(raw)
	default:
		return nil, &DecodeError{Fields: []FieldError{
			{Field: "version", Reason: "unrecognized envelope version"},
		}}
	}
}

func decodePostQuantum(raw []byte) (*PostQuantum, error) {
	var wire pqWire
	if err := json.Unmarshal(bytes.TrimSpace(raw), &wire); err != nil {
		return nil, &DecodeError{Fields: []FieldError{
			{Field: "envelope", Reason: "malformed JSON: " + err.Error()},
		}}
	}

	derr := &DecodeError{}
	env := &PostQuantum{Algorithm: wire.Algorithm, SecurityLevel: wire.SecurityLevel}

	alg, algErr := ParseAlgorithm(wire.Algorithm)
	switch {
	case wire.Algorithm == "":
		derr.add("algorithm", "missing")
	case algErr != nil:
		derr.add("algorithm", "unsupported identifier %q", wire.Algorithm)
	}

	switch wire.SecurityLevel {
	case "standard", "high":
	case "":
		derr.add("securityLevel", "missing")
	default:
		derr.add("securityLevel", "unrecognized value %q", wire.SecurityLevel)
	}

	env.EncapsulatedKey = decodeField(derr, "encapsulatedKey", wire.EncapsulatedKey)
	env.Ciphertext = decodeField(derr, "ciphertext", wire.Ciphertext)
	env.Nonce = decodeField(derr, "nonce", wire.Nonce)
	env.AuthTag = decodeField(derr, "authTag", wire.AuthTag)

	if env.Nonce != nil && len(env.Nonce) != NonceSize {
		derr.add("nonce", "length %d, want %d", len(env.Nonce), NonceSize)
	}
	if env.AuthTag != nil && len(env.AuthTag) != TagSize {
		derr.add("authTag", "length %d, want %d", len(env.AuthTag), TagSize)
	}
	if algErr == nil && env.EncapsulatedKey != nil {
		if params, ok := ParamsForKEM(alg.KEM); ok && len(env.EncapsulatedKey) != params.CiphertextSize {
			derr.add("encapsulatedKey", "length %d, want %d for %s",
				len(env.EncapsulatedKey), params.CiphertextSize, alg.KEM)
		}
	}

	if wire.Timestamp == "" {
		derr.add("timestamp", "missing")
	} else if ts, err := time.Parse(time.RFC3339, wire.Timestamp); err != nil {
		derr.add("timestamp", "not an RFC 3339 timestamp")
	} else {
		env.Timestamp = ts
	}

	if len(derr.Fields) > 0 {
		return nil, derr
	}
	return env, nil
}

func decodeLegacy(raw []byte) (*Legacy, error) {
	var wire legacyWire
	if err := json.Unmarshal(bytes.TrimSpace(raw), &wire); err != nil {
		return nil, &DecodeError{Fields: []FieldError{
			{Field: "envelope", Reason: "malformed JSON: " + err.Error()},
		}}
	}

	derr := &DecodeError{}
	env := &Legacy{Algorithm: wire.Algorithm}

	if wire.Algorithm == "" {
		derr.add("algorithm", "missing")
	}
	env.Ciphertext = decodeField(derr, "ciphertext", wire.Ciphertext)

	if len(derr.Fields) > 0 {
		return nil, derr
	}
	return env, nil
}

// decodeBare wraps a raw opaque ciphertext in a Legacy envelope. Text that
// decodes as base64 is treated as an encoded ciphertext; anything else is
// taken as raw ciphertext bytes.
func decodeBare(raw []byte) (*Legacy, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, &DecodeError{Fields: []FieldError{
			{Field: "ciphertext", Reason: "empty"},
		}}
	}

	if decoded, err := lenientBase64(string(trimmed)); err == nil && len(decoded) > 0 {
		return &Legacy{Ciphertext: decoded}, nil
	}
	ciphertext := make([]byte, len(trimmed))
	copy(ciphertext, trimmed)
	return &Legacy{Ciphertext: ciphertext}, nil
}

// decodeField base64-decodes a required wire field, recording a problem on
// derr if the field is missing or not valid base64. Returns nil when the
// field is unusable.
func decodeField(derr *DecodeError, name, value string) []byte {
	if value == "" {
		derr.add(name, "missing")
		return nil
	}
	decoded, err := lenientBase64(value)
	if err != nil {
		derr.add(name, "not valid base64")
		return nil
	}
	return decoded
}

// lenientBase64 accepts standard or URL-safe base64, with or without padding.
func lenientBase64(s string) ([]byte, error) {
	if data, err := base64.StdEncoding.DecodeString(s); err == nil {
		return data, nil
	}
	if data, err := base64.RawStdEncoding.DecodeString(s); err == nil {
		return data, nil
	}
	if data, err := base64.RawURLEncoding.DecodeString(s); err == nil {
		return data, nil
	}
	return base64.URLEncoding.DecodeString(s)
}

// Encode serializes an envelope to its JSON wire form.
func Encode(env Envelope) ([]byte, error) {
	switch e := env.(type) {
	case *PostQuantum:
		return json.Marshal(pqWire{
			Version:         VersionPostQuantum,
			Algorithm:       e.Algorithm,
			SecurityLevel:   e.SecurityLevel,
			EncapsulatedKey: base64.StdEncoding.EncodeToString(e.EncapsulatedKey),
			Ciphertext:      base64.StdEncoding.EncodeToString(e.Ciphertext),
			Nonce:           base64.StdEncoding.EncodeToString(e.Nonce),
			AuthTag:         base64.StdEncoding.EncodeToString(e.AuthTag),
			Timestamp:       e.Timestamp.UTC().Format(time.RFC3339),
		})
	case *Legacy:
		return json.Marshal(legacyWire{
			Version:    VersionLegacy,
			Algorithm:  e.Algorithm,
			Ciphertext: base64.StdEncoding.EncodeToString(e.Ciphertext),
		})
	default:
		return nil, fmt.Errorf("unsupported envelope type %T", env)
	}
}
