// Package tokenstore persists per-provider token records, the durable
// analog of browser-scoped key/value storage.
//
// Each provider owns exactly one record, keyed by a provider-specific
// constant. Only the owning adapter writes its own key; the session manager
// never touches tokens directly.
//
// MemoryStore backs tests and ephemeral processes. FileStore persists a
// single JSON document with atomic replacement and 0600 permissions, and can
// seal the document at rest with an encryption.Encryptor.
package tokenstore
