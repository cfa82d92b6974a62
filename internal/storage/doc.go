// Package storage provides the persistence backends for the availability
// document.
//
// Every backend stores one opaque JSON document and replaces it wholesale on
// each save:
//
//   - file: a local JSON file, written through a temp file and rename
//   - memory: process memory, for tests and throwaway runs
//   - redis: a single string key, for teams without a shared filesystem
//
// Backends create an empty document on first access. Decoding, validation and
// self-healing of corrupt documents live in the availability package.
package storage
