// Package schedule owns deferred delivery: the digest boundary math and the
// queue of schedule/digest entries the dispatcher persists when a user's
// quiet hours or digest frequency preference applies.
//
// NextDigest is a pure function of ("now", frequency) so boundary rules are
// unit-testable independent of wall-clock time. The Queue is a
// loose-consistency store: entries are upserted with a (user, type,
// scheduled-for) dedup key and last-write-wins semantics, and a write
// failure is logged by the caller rather than propagated.
package schedule
