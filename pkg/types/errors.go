package types

import "errors"

// Catalog errors.
var (
	ErrUnknownMaterial    = errors.New("unknown material")
	ErrUnknownEnchantment = errors.New("unknown enchantment")
	ErrUnknownItemFlag    = errors.New("unknown item flag")
)

// Mutation errors. All of them signal an invalid argument on a validated
// path; unvalidated paths never return them.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidLevel    = errors.New("invalid enchantment level")
	ErrNotApplicable   = errors.New("enchantment cannot be applied to this item")
	ErrForeignMeta     = errors.New("metadata was not created by this factory")
)

// Decode errors.
var (
	ErrMissingType   = errors.New("record has no type")
	ErrInvalidField  = errors.New("record field has the wrong type")
	ErrMalformedData = errors.New("malformed record data")
)

// Store errors.
var (
	ErrStoreDetached   = errors.New("store is detached")
	ErrAlreadyAttached = errors.New("store is already attached")
	ErrNotFound        = errors.New("item not found")
	ErrInvalidID       = errors.New("invalid item ID")
	ErrInvalidData     = errors.New("invalid item data")
	ErrInvalidFilter   = errors.New("invalid filter value type")
)
