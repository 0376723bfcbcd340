// Package adapter wraps one provider's OAuth SDK behind a uniform
// surface: interactive sign-in, remote+local sign-out, silent token
// renewal and startup session replay. Each adapter publishes its own
// authentication state as a signal; arbitration between adapters is the
// session manager's job, not the adapter's.
package adapter
