// Package vanilla provides a reference platform: a material catalog and an
// enchantment registry loaded from an embedded YAML table. Hosts with their
// own tables can load them with Parse or LoadFile.
package vanilla
