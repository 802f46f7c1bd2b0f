package config

import "strings"

const SourceFileExt = ".tm"

// SourceFileExtensions are all recognized source file extensions
var SourceFileExtensions = []string{".tm"}

// ProjectFileName is looked up next to the sources when -config is not given.
const ProjectFileName = "traitc.yaml"

// IsTestMode indicates if the program is running in test mode.
var IsTestMode = false

// Built-in names
const (
	SelfTypeName   = "Self"
	SelfParamName  = "self"
	PathSeparator  = "::"
	GlobImportName = "*"
)

// Primitive type names accepted by the parser
const (
	U8TypeName   = "u8"
	U16TypeName  = "u16"
	U32TypeName  = "u32"
	U64TypeName  = "u64"
	U256TypeName = "u256"
	BoolTypeName = "bool"
	B256TypeName = "b256"
	StrTypeName  = "str"
)

// DefaultNumericBits is the width an unsuffixed integer literal decays to.
const DefaultNumericBits = 64

// HasSourceExt reports whether path ends with a recognized source extension.
func HasSourceExt(path string) bool {
	for _, ext := range SourceFileExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// TrimSourceExt removes a recognized source extension from name.
func TrimSourceExt(name string) string {
	for _, ext := range SourceFileExtensions {
		if strings.HasSuffix(name, ext) {
			return strings.TrimSuffix(name, ext)
		}
	}
	return name
}
