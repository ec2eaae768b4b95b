// Package services defines the error taxonomy shared by reel's workers.
//
// Errors are tagged with sentinel markers so worker boundaries can decide the
// recovery policy: a missing external tool is fatal, an unavailable encoder
// advances the fallback chain, a destination conflict skips one file, and a
// filesystem failure is recorded without aborting the batch.
package services
