// Package async provides the small concurrency toolkit the dispatcher fans
// out with: type-safe futures joined with an all-complete barrier, and
// fire-and-forget background tasks with panic capture.
//
// The join helpers deliberately treat errors as data. A notification fan-out
// needs every channel's outcome, successful or not, so JoinAll never
// short-circuits on the first error the way errgroup-style helpers do.
//
// Fire runs best-effort side effects (delivery-log writes, fallback sends)
// on a context detached from the caller's cancellation: the orchestration
// call may return long before the background task finishes, and its result
// must not depend on it. Such tasks can be lost on process crash.
package async
