// Package registry defines the category specifications the ingest pipeline
// runs against: which metadata and review collections feed each category and
// which keyword phrases admit a product.
//
// A Registry is an explicit immutable value constructed once at startup and
// passed into the pipeline, never a package-level singleton, so tests can
// substitute small registries. Builtin returns the production table.
package registry
