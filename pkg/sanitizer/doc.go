// Package sanitizer normalizes user input before validation and storage.
//
// All functions are idempotent and handle invalid input by returning an
// empty value rather than an error; validation decides what is acceptable.
//
// Normalization includes:
//   - Phone numbers: E.164 (+[country][number]) for Israeli and US numbers
//   - Names: collapsed whitespace, trimmed
//   - Time zones: trimmed IANA names with canonical separators
//   - Dates: trimmed, de-duplicated and sorted YYYY-MM-DD lists
package sanitizer
