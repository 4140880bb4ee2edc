// Package catalog implements the three metamodel catalog services —
// intents, nodes, workflows — described in §4.2. Each service is CRUD over
// a Postgres-backed collection (jackc/pgx/v5), fronted by an in-process
// cache that write paths invalidate, with an optional Redis layer
// (redis/go-redis/v9) for cross-process cache sharing, and a periodic
// revalidation job (robfig/cron/v3) that re-runs each node metamodel
// through its validator and logs valid/invalid counts, mirroring the
// "startup hook" the spec calls for but on a recurring schedule as well.
package catalog
