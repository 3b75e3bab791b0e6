// Package tags copies ID3v2 metadata between MP3 files.
//
// The copy has overwrite semantics: whatever tag set the destination already
// carries is dropped and replaced with the source's frames. A destination
// with no existing tags is the normal case for freshly encoded output and is
// not an error; an unreadable source tag set is.
package tags
