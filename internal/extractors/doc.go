// Package extractors groups the driven.TextExtractor implementations that turn
// uploaded notes into plain text. Each sub-package handles one family of MIME
// types and is registered with the NoteService at startup.
package extractors
