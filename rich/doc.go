// Package rich provides the styled-segment model and the rich-text markup
// parser for the textmesh pipeline.
//
// A markup string such as
//
//	"Deals {red:{damage}} fire damage"
//
// parses into a tree of segments: literal runs, placeholders resolved at
// render time, and style spans. Style scopes nest; an inner scope overrides
// same-key attributes of the enclosing scopes. Parsing is total: malformed
// markup degrades to literal text and never produces an error.
//
// # Markup syntax
//
//	{style:text}   apply the named style to text (nesting allowed)
//	{a,b:text}     apply several styles, left to right
//	{name}         placeholder, resolved by a fetch source
//	{{  }}         literal braces
//
// A set of standard styles is recognized without a StyleTable: CSS color
// names ("red"), hex colors ("#ff00ff", 3/4/6/8 digits), "s-4" stroke
// width, "s-red" stroke color, and "v-1.5" magic number. Anything else is
// looked up in the caller's StyleTable; names the table does not know are
// kept as opaque attributes and forwarded to the shaping adapter.
package rich
