// Package artistry manages the lifecycle of artist records: CRUD, substring
// search, and per-user rating upserts over a relational store, plus a profile
// image blob that the database cannot transactionally protect.
//
// The Service orchestrates each operation: validation happens before any
// transaction opens, repository methods own the transaction boundaries, and
// blob compensation runs after the database outcome is final. Repositories
// (memory, Postgres) and blob stores (memory, filesystem, S3) are provided
// under subpackages and injected through functional options, so the core can
// be exercised against fakes.
//
// Cross-store consistency is best effort: a failed blob cleanup is logged,
// never surfaced, because the committed database state is authoritative by
// the time compensation runs.
package artistry
