// Package identity defines the canonical user model shared across
// identity providers.
//
// Each provider returns its own native payload shape (enterprise directory
// claims, consumer profile). Native payloads are explicitly tagged variant
// types validated at the normalization boundary; Normalize maps a well-formed
// payload into a UnifiedUser and fails closed with MALFORMED_USER_PAYLOAD
// when required fields are absent. A partially populated user never enters
// the canonical model.
package identity
