// Package types defines the identifiers, the ordered Record shape, the
// collaborator interfaces and the standard error values shared by the
// satchel packages.
//
// Materials, enchantments and item flags are symbolic names. The catalogs
// that give them meaning (stack bounds, applicability, conflicts) live behind
// the MaterialCatalog and EnchantmentRegistry interfaces so that any platform
// can plug its own tables in.
package types
