// Package core implements the low-level machinery for loading PDF
// bodies: the tokenizer, the object model, the lazy indirect-object
// table, cross-reference discovery, and stream extraction.
//
// The code errs on the side of reading damaged files. Problems that can
// be worked around are recorded as diagnostics and the affected object
// degrades to Null or Missing; only damage that makes the file
// unaddressable, such as a broken cross-reference section, aborts a
// load with a ParseError.
package core
