// Package tracker records delivery outcomes to an append-only log. The
// dispatcher writes one record per orchestration call with every channel's
// outcome and a derived overall status; writes are best-effort and a failed
// write never fails the orchestration.
package tracker
