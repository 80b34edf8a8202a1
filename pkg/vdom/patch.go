package vdom

// PatchOp is the type of a live tree mutation.
type PatchOp uint8

const (
	PatchCreateNode  PatchOp = 0x01 // Create a detached node
	PatchInsertNode  PatchOp = 0x02 // Insert a detached node
	PatchMoveNode    PatchOp = 0x03 // Move an attached node
	PatchRemoveNode  PatchOp = 0x04 // Detach a node
	PatchSetText     PatchOp = 0x05 // Update text content
	PatchSetAttr     PatchOp = 0x06 // Set/update attribute
	PatchRemoveAttr  PatchOp = 0x07 // Remove attribute
	PatchSetProperty PatchOp = 0x08 // Assign a live property (value, checked, ...)
)

// String returns the string representation of the PatchOp.
func (op PatchOp) String() string {
	switch op {
	case PatchCreateNode:
		return "CreateNode"
	case PatchInsertNode:
		return "InsertNode"
	case PatchMoveNode:
		return "MoveNode"
	case PatchRemoveNode:
		return "RemoveNode"
	case PatchSetText:
		return "SetText"
	case PatchSetAttr:
		return "SetAttr"
	case PatchRemoveAttr:
		return "RemoveAttr"
	case PatchSetProperty:
		return "SetProperty"
	default:
		return "Unknown"
	}
}

// Patch records one mutation applied to a live tree. Node references are
// the live tree's node IDs.
type Patch struct {
	Op     PatchOp // Operation type
	Target string  // Node the operation applies to
	Parent string  // Parent for Insert/Move/Remove
	Before string  // Reference sibling for Insert/Move ("" appends)
	Key    string  // Attribute or property name
	Value  string  // New value
}
