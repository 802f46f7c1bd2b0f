package diagnostics

// ErrorCode identifies a diagnostic. The letter names the stage that
// reports it: P parser, A analyzer, T trait engine, C loading/config.
type ErrorCode string

const (
	ErrP001 ErrorCode = "P001" // Unexpected token
	ErrP002 ErrorCode = "P002" // Unterminated block or list

	ErrA001 ErrorCode = "A001" // Undeclared identifier
	ErrA002 ErrorCode = "A002" // Wrong number of type arguments
	ErrA003 ErrorCode = "A003" // Kind error (not a trait / not a type)
	ErrA004 ErrorCode = "A004" // Missing trait item in impl
	ErrA005 ErrorCode = "A005" // Item is not a member of the trait
	ErrA006 ErrorCode = "A006" // Unknown import

	ErrT001 ErrorCode = "T001" // Conflicting impls for trait and type
	ErrT002 ErrorCode = "T002" // Duplicate declaration defined for type
	ErrT003 ErrorCode = "T003" // Multiple definitions of name in one impl
	ErrT004 ErrorCode = "T004" // Trait constraint not satisfied
	ErrT005 ErrorCode = "T005" // Multiple applicable items in scope
	ErrT006 ErrorCode = "T006" // Symbol not found
	ErrT007 ErrorCode = "T007" // Type annotation needed

	ErrC001 ErrorCode = "C001" // Module dependency cycle
	ErrC002 ErrorCode = "C002" // Missing module
)

var codeTitles = map[ErrorCode]string{
	ErrP001: "unexpected token",
	ErrP002: "unterminated block",
	ErrA001: "undeclared identifier",
	ErrA002: "wrong number of type arguments",
	ErrA003: "kind error",
	ErrA004: "missing trait item",
	ErrA005: "item not in trait",
	ErrA006: "unknown import",
	ErrT001: "conflicting implementations",
	ErrT002: "duplicate definition for type",
	ErrT003: "multiple definitions of name",
	ErrT004: "trait constraint not satisfied",
	ErrT005: "multiple applicable items in scope",
	ErrT006: "symbol not found",
	ErrT007: "type annotation needed",
	ErrC001: "module dependency cycle",
	ErrC002: "missing module",
}

// Title returns a short human description of the code.
func (c ErrorCode) Title() string {
	if t, ok := codeTitles[c]; ok {
		return t
	}
	return "error"
}
