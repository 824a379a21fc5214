// Package airdropcache is a cache-aside resolution layer for airdrop
// allocations.
//
// Two questions are answered, both read-heavy:
//
//   - which internal airdrop id belongs to a contract address (Registry),
//     including "none", which is cached too;
//   - how much was allocated to, used by and is left for each of many users
//     of one airdrop (Balances).
//
// Components:
//   - Store: shared handle over a Provider (redis, bigcache, ristretto) and a
//     GenStore (per-key generation counters, local or redis).
//   - Single[V] / Batch[V]: generic cache-aside primitives for one key and
//     for N keys per call. Entry types plug in through Cacheable and
//     BatchCacheable.
//   - Resolver: the two lookups wired to a RegistrySource and a LedgerSource
//     (see source/sqlstore and source/mongostore).
//
// Keys:
//
//	<prefix>airdrop_<contract>            - registry id ("0" = not registered)
//	<prefix>{<chain>_<airdrop>}_<user>    - summed ledger row of one user
//
// All keys of one airdrop share a redis cluster hash tag, so one MGET covers
// them. Identifiers are lowercased before they become keys.
//
// Populate pattern:
//
//	obs := gen(k)             // before the source read
//	v   := source(k)
//	go write(k, v) iff gen(k) == obs
//
// Cache writes never block or fail a request. Clear bumps the generation
// before deleting so a racing write is discarded.
package airdropcache
