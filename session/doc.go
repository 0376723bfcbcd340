// Package session arbitrates authentication state across provider
// adapters. A single event loop consumes every adapter's state signal
// and folds it into one SessionState: at most one provider is active,
// events from non-active providers are discarded, and switching
// providers always passes through the signed-out state.
package session
