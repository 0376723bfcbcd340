// Package encryption provides authenticated symmetric encryption for
// persisted token records.
//
// Keys are derived from a passphrase with SHA-256. Two AEAD algorithms are
// supported: AES-256-GCM (default) and ChaCha20-Poly1305 for CPUs without
// AES hardware acceleration. Ciphertexts are base64-encoded and carry their
// nonce as a prefix.
package encryption
