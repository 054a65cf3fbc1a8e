// Package push delivers notifications to registered devices through the
// three platform providers: APNs (iOS), FCM (Android) and Web Push. Each
// client authenticates with a short-lived signed token (ES256 provider token
// for APNs, OAuth2 service-account token for FCM, per-origin VAPID token for
// Web Push), cached process-wide and refreshed on the first call after
// expiry.
//
// Response classification is declarative: every client carries a table of
// provider error codes that mean the destination token is permanently dead
// (unregistered, expired, malformed). Those map to Retryable=false so the
// caller can deactivate the token upstream; everything else non-2xx is a
// transient failure that counts against the provider's circuit.
//
// The Router fans a send out to all of a user's devices concurrently and
// wraps every provider call in a named circuit ("push-ios", "push-android",
// "push-web"). An open circuit produces a failed, retryable Result without
// any network I/O, so degraded providers never raise errors up the stack.
package push
