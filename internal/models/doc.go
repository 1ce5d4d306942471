// Package models defines the core domain models for Waylog.
//
// # Models
//
//   - Trip: a business trip with an owner and invited members
//   - LogRecord: one daily-log observation for one (owner, date, category)
//   - GroupedEntry lives in internal/reconcile since it is a derived
//     projection, not persisted state
//
// # Design Principles
//
// 1. **Tagged union over inheritance**: a LogRecord carries exactly one
// category payload, selected by the Category discriminant. There is no
// behavioral polymorphism between categories, only data-shape variation.
//
// 2. **Two identifiers per record**: ID is the stable cross-reference token
// used inside RelatedLogs and is assigned at creation, never reassigned.
// StorageKey is whatever primary key the persistence backend hands out.
// Linking always speaks in IDs; persistence calls always speak in storage
// keys.
//
// 3. **Avoid circular references**: relationships are ID string lists, not
// pointers.
package models
