// Package schedule answers the one question the matching engine must ask
// before trusting a guide identity: does this identity carry any upcoming
// program data?
//
// Window bounds the look-ahead period. Validator is the collaborator contract
// for the existence check; Store is a SQLite-backed implementation holding a
// local cache of program rows. A validator returning an error means the check
// could not complete, which callers must keep distinct from a clean false.
package schedule
