// Package core provides the business logic behind the exam schedule service.
//
// It sits between the transports (HTTP handlers, the CLI) and the domain
// packages, and can be used by either without modification.
//
// # Generation
//
// [Service.Generate] takes the three uploaded workbooks, parses them with
// the schedule package, runs the generator and stores the result under a
// fresh UUID. Generations are CPU bound, so a [GenerationLimiter] caps how
// many run at once; a request that cannot get a slot in time fails with
// [ErrTooManyGenerations].
//
// # Presentation
//
// [Service.View] renders one page of a stored dataset through the view
// package. Adapters pass the filter text and page number they received; the
// page is clamped into range before rendering.
//
// # Retention
//
// Stored schedules expire. [Service.StartRetentionScheduler] purges old
// entries on a ticker until its context is cancelled.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each category has its own code range for support reference:
//
//   - FILE001-FILE004: uploaded files (size, format, missing, empty)
//   - XLS001-XLS002: workbook contents (headers, numbers)
//   - SCH001-SCH002: generation (rooms, rules)
//   - UPL001-UPL003: request lifecycle (busy, cancelled, timeout)
//   - STO001-STO003: storage (not found, unreachable, busy)
package core
