// Package handle manages opaque handles to native objects.
//
// Every object the boundary allocates lives in a Table and is referred to
// by an address-sized Handle. Ownership is explicit per spec of each
// operation:
//
//	own    - constructor results; exactly one owner, Remove destroys
//	shared - factory results with shared ownership; Remove releases one
//	         reference, the object dies at zero
//	borrow - method/accessor arguments; Borrow/Return bracket the call
//	         and block Remove while outstanding
//
// Handles are typed: each wrapped native class registers a type ID and
// GetTyped refuses handles of the wrong class, raising the defensive
// null-pointer fault at the boundary instead of undefined behavior.
//
// Nothing here is garbage collected. The caller that owns a handle must
// eventually issue the matching destroy operation; Table observers exist
// so tests and tooling can verify that it did.
package handle
