// Package sanitizer normalizes submitted event fields before they are
// validated and stored.
//
// All functions are idempotent. Invalid input is handled by returning an empty
// or unchanged value rather than an error; validation is a separate step.
//
// Normalization includes:
//   - Strings: collapse whitespace, trim leading/trailing spaces
//   - Locations: lowercase comparison keys so "Studio  Theatre" matches "studio theatre"
//   - File names: replace unsafe characters with "_", lowercase - "My File (1).PDF" becomes "my_file_1_.pdf"
//   - Phone numbers: E.164 when the number parses for a supported region
//   - URLs: enforce https, lowercase the domain, keep the path
//   - Slices: remove duplicates and empty values after normalization
package sanitizer
