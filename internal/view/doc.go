// Package view materializes struct bindings into live instances.
//
// A Materializer turns a resolved StructBinding into a Factory exactly once
// per binding: the factory holds a dispatch table routing every accessor to
// read-generated-storage, write-generated-storage, forward-to-delegate, or
// call-view-with-guard. Instances are small structs over a backing State
// handle, an optional delegate handle, and a setter guard flag; calls route
// through the shared table without per-call interpretation.
//
// Instances are not safe for concurrent calls against the same instance's
// setter guard; callers serialize access per instance.
package view
