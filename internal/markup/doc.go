// Package markup defines the event model for parsed templates: the closed set
// of structural event kinds (text, comments, CDATA, doctypes, XML
// declarations, processing instructions and the three element tag forms),
// the ordered attribute collection attached to tag events, and the ordered
// event containers built from them.
//
// Containers come in two capability variants. Markup is the mutable form used
// while building a parse result or while a processing pass rewrites it.
// Immutable is the frozen form published to the template cache: it only
// exposes read access, every event reachable through it rejects mutation, and
// Fork is the single way back to a mutable copy. Freezing deep-copies, so the
// cached backing storage is never reachable through a mutable handle and one
// cached parse can be read by any number of concurrent processing runs
// without locking.
package markup
