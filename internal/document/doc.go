// Package document builds the exported Word document.
//
// A Document is an ordered list of paragraphs (title, headings, code blocks)
// encoded as a minimal WordprocessingML package: content types, package
// relationships, a styles part and the main document part. The Composer
// turns walked source files into sections of that document.
package document
