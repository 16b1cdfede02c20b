// Package cppemit renders a fully lowered lir.Header as C++17 source text,
// including the deferred-evaluation wrapper synthesis that keeps
// static_asserts and template instantiations from firing before the
// enclosing template is itself instantiated.
package cppemit

import (
	"fmt"
	"strings"

	"github.com/grailbio/tmppyc/lir"
)

// TemplateParamDecl renders t as the kind half of a template-parameter
// declaration: `bool`, `int64_t`, `typename`, `typename...`, or a nested
// `template <...> class`.
func TemplateParamDecl(t lir.Type) string {
	switch t := t.(type) {
	case lir.Bool:
		return "bool"
	case lir.Int64:
		return "int64_t"
	case lir.TypeType:
		return "typename"
	case lir.Variadic:
		return "typename..."
	case lir.Template:
		parts := make([]string, len(t.ArgTypes))
		for i, a := range t.ArgTypes {
			parts[i] = TemplateParamDecl(a)
		}
		return "template <" + strings.Join(parts, ", ") + "> class"
	default:
		panic(fmt.Sprintf("cppemit: unsupported template argument kind: %T", t))
	}
}

// TemplateArgDeclToCpp renders one full parameter declaration, `kind name`.
func TemplateArgDeclToCpp(arg lir.TemplateArgDecl) string {
	return TemplateParamDecl(arg.Type) + " " + arg.Name
}

func templateArgDeclsToCpp(args []lir.TemplateArgDecl) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = TemplateArgDeclToCpp(a)
	}
	return strings.Join(parts, ", ")
}
