// Package transform sandboxes and executes the inline per-element scripts
// a mapping file's transforms section declares.
//
// Each script is a JavaScript function body run with github.com/dop251/goja,
// a pure-Go ECMAScript interpreter, rather than shelling out to a real JS
// engine or embedding a C library: scripts here are short, untrusted
// fragments of mapping configuration, not application code, and goja's
// interrupt mechanism gives a clean way to bound their running time without
// OS-level sandboxing. A script's contract is fixed: it runs as
// (element, ctx) and is expected to return string[]; any failure — parse
// error, thrown exception, timeout, or a non-array return — is treated as
// "no opinion" and the caller's fallback lines are used instead. A
// misbehaving transform must never abort a conversion.
package transform
