// Package core provides the ingestion and derived-view pipeline for the
// climate dashboard.
//
// This package holds all domain logic independent of any UI or transport
// layer. It can be used by web handlers, CLI tools, or tests without
// modification.
//
// # Pipeline
//
// Raw text flows through a fixed chain of pure steps:
//
//  1. [Parse] splits CSV text into header-keyed [RawRow] values
//  2. [Normalize] coerces the recognized metric columns into [Record] values
//  3. [BuildIndex] derives the sorted countries and years ([DomainIndex])
//  4. [Resolver.Resolve] turns a prior [Selection] into a valid one
//  5. The view functions compute snapshots, series, rankings and aggregates
//
// # Service
//
// [Service] owns the last good state. Each call to [Service.Ingest] runs the
// whole chain and publishes the result atomically; a failed ingestion never
// replaces what is already loaded.
//
// # Missing values
//
// Metric cells that are empty or not numeric become NaN. Views that need a
// metric skip records where it is not finite, so a bad cell never drops the
// row from the dataset.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - FILE001-FILE005: File errors (size, format, encoding, empty)
//   - DATA001-DATA002: Dataset errors (no usable rows, nothing loaded)
//   - VAL001: Invalid parameters (unknown metric)
//   - UPL002-UPL005: Ingestion errors (busy, cancelled, timeout)
package core
