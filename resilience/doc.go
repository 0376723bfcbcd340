// Package resilience provides retry with exponential backoff for transient
// failures against identity providers.
//
// It backs the bounded readiness wait during provider discovery and the
// optional profile-fetch retries in the adapters. Retries are always
// finite; callers translate exhaustion into a domain error such as
// PROVIDER_UNAVAILABLE.
package resilience
