// Package item implements the mutable item stack: a material, a stack
// amount, a durability value and an optional metadata block carrying a
// display name, lore, enchantments, item flags and the unbreakable tag.
//
// Metadata is always handed out as an independent copy. Mutating a copy has
// no effect on the stack until it is committed back with Stack.SetMeta; the
// convenience mutators on Stack perform that read, mutate, commit cycle for
// the caller.
//
// A Codec converts stacks to and from types.Record, the compact key/value
// shape used for configuration files and the stash. Records written by
// older generations, which stored enchantments in a flat top-level map,
// remain readable.
//
// Stacks are not safe for concurrent mutation; callers serialize access.
package item
