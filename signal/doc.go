// Package signal provides last-value publish/subscribe primitives for
// authentication state propagation.
//
// A Signal holds a current value and fans every published value out to
// active subscribers. Subscriptions are scoped to a context: cancel the
// context and the subscription is torn down, replacing the implicit
// auto-unsubscribe of reactive UI frameworks with an explicit cancellation
// token.
//
// Per subscriber, delivery order matches publish order. Late subscribers
// receive the current value on subscription, so no observer starts without
// a snapshot.
//
// # Usage
//
//	authenticated := signal.New(false)
//	ch := authenticated.Subscribe(ctx)
//	authenticated.Publish(true)
package signal
