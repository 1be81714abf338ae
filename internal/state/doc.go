// Package state holds the user's production plan and persists it.
//
// A State is a list of named groups of rows plus per-category machine
// overrides. It is saved as a versioned payload:
//
//	{"version":5,"data":{"groups":[{"name":...,"rows":[ROW...]}],
//	 "settings":{"assemblerOverrides":{CATEGORY:MACHINE}}}}
//
// where ROW is [recipe, machine|null, count fraction text,
// [module|null...], beacon module|null, beacon count].
//
// Two transports exist. URL fragments carry "<version>-<text>", where text
// is compressed and base64url-encoded for versions above 2. Local storage
// keeps the uncompressed payload under a single key. Payloads from older
// versions are migrated forward one version at a time on load.
//
// Decode failures (malformed payload, unknown version, names missing from
// the game data) are recoverable: the *OrDefault helpers return a fresh
// State together with the error so the caller can report it.
package state
