// Package core joins the life expectancy and healthcare expenditure tables
// for a single target year.
//
// The package holds all domain logic independent of any transport. It is
// used by the CLI, the web server and the stores without modification.
//
// # Pipeline
//
//  1. Both source tables are read to completion ([ReadTable]). Headers are
//     validated against the registered [SourceDefinition].
//  2. [BuildLifeIndex] indexes life rows by Code for the target year, last
//     write wins on duplicate codes.
//  3. [JoinAndFilter] walks the health rows in order and keeps those whose
//     Code is in the index.
//  4. [SortRows] orders the result by Entity, stable.
//  5. [WriteCombined] serializes the five output columns.
//
// [Service.Run] wires the steps to files on disk and replaces the output
// file atomically through [WriteFileAtomic].
//
// # Error Handling
//
// Failures are reported as *[SchemaError] (a required column is absent) or
// *[IOError] (a file could not be opened, read or written). An empty join is
// not an error; see [Result.Empty]. [MapError] turns any error into a coded
// [UserMessage].
package core
