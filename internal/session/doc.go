// Package session owns one interactive run of the application. A
// session caches GPU detection, exposes a thread-safe activity log, and
// schedules work on two independent slots: at most one conversion batch
// and one organize batch run concurrently, and files within a batch are
// processed strictly in order. Cancellation is cooperative, checked
// between files and before each encoder attempt.
package session
