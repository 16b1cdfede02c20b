package hir

import (
	"github.com/grailbio/tmppyc/ast"
	"github.com/grailbio/tmppyc/diag"
	"github.com/grailbio/tmppyc/symbol"
)

// ElaborateClass elaborates `class C:` / `class C(Exception):` into a
// Custom type, registering it both as a value (callable constructor) and as
// a type.
func ElaborateClass(n *ast.ClassDef, ctx *Context) Custom {
	isException := n.Base == "Exception"
	if n.Base != "" && !isException {
		diag.Raise(diag.UnsupportedSyntax, ctx.Source, n.Position, "class %s: only 'Exception' is supported as a base class", n.Name)
	}

	var init *ast.FunctionDef
	for _, stmt := range n.Body {
		fd, ok := stmt.(*ast.FunctionDef)
		if !ok || fd.Name != "__init__" {
			diag.Raise(diag.UnsupportedSyntax, ctx.Source, stmt.Pos(), "class %s: only a single __init__ method is supported in a class body", n.Name)
		}
		if init != nil {
			diag.Raise(diag.UnsupportedSyntax, ctx.Source, fd.Position, "class %s: only one __init__ method is allowed", n.Name)
		}
		init = fd
	}
	if init == nil {
		diag.Raise(diag.UnsupportedSyntax, ctx.Source, n.Position, "class %s: must define __init__", n.Name)
	}
	if len(init.Args) == 0 || init.Args[0].Name != "self" {
		diag.Raise(diag.UnsupportedSyntax, ctx.Source, init.Position, "class %s: __init__'s first parameter must be named 'self'", n.Name)
	}
	if init.Args[0].Annotation != nil {
		diag.Raise(diag.UnsupportedSyntax, ctx.Source, init.Args[0].Position, "class %s: 'self' must not be annotated", n.Name)
	}

	seenParam := map[string]bool{}
	var fieldOrder []string
	fieldType := map[string]Type{}
	for _, a := range init.Args[1:] {
		if a.Annotation == nil {
			diag.Raise(diag.UnsupportedSyntax, ctx.Source, a.Position, "class %s: parameter %s must have a type annotation", n.Name, a.Name)
		}
		if seenParam[a.Name] {
			diag.Raise(diag.Redefinition, ctx.Source, a.Position, "class %s: duplicate parameter name %s", n.Name, a.Name)
		}
		seenParam[a.Name] = true
		fieldOrder = append(fieldOrder, a.Name)
		fieldType[a.Name] = ElaborateTypeDecl(a.Annotation, ctx)
	}

	body := init.Body
	message := ""
	if isException {
		if len(body) == 0 {
			diag.Raise(diag.InvalidException, ctx.Source, init.Position, "class %s: an exception class's __init__ must start with self.message = \"...\"", n.Name)
		}
		msgStmt, ok := body[0].(*ast.Assign)
		if !ok {
			diag.Raise(diag.InvalidException, ctx.Source, body[0].Pos(), "class %s: an exception class's __init__ must start with self.message = \"...\"", n.Name)
		}
		lit, isSelfMessage := selfFieldAssignLiteral(msgStmt, "message")
		if !isSelfMessage {
			diag.Raise(diag.InvalidException, ctx.Source, body[0].Pos(), "class %s: an exception class's __init__ must start with self.message = \"...\"", n.Name)
		}
		message = lit
		body = body[1:]
	}

	assignedFields := map[string]bool{}
	for _, stmt := range body {
		assign, ok := stmt.(*ast.Assign)
		if !ok {
			diag.Raise(diag.UnsupportedSyntax, ctx.Source, stmt.Pos(), "class %s: __init__ body may only contain 'self.X = X' assignments", n.Name)
		}
		field, fieldName, ok := selfFieldAssignTarget(assign)
		if !ok || field != fieldName {
			diag.Raise(diag.UnsupportedSyntax, ctx.Source, stmt.Pos(), "class %s: each statement must be 'self.X = X' for a constructor parameter X", n.Name)
		}
		if _, declared := fieldType[fieldName]; !declared {
			diag.Raise(diag.UnsupportedSyntax, ctx.Source, stmt.Pos(), "class %s: 'self.%s = %s' does not correspond to a constructor parameter", n.Name, fieldName, fieldName)
		}
		if assignedFields[fieldName] {
			diag.Raise(diag.Redefinition, ctx.Source, stmt.Pos(), "class %s: field %s is assigned more than once", n.Name, fieldName)
		}
		assignedFields[fieldName] = true
	}
	for _, f := range fieldOrder {
		if !assignedFields[f] {
			diag.Raise(diag.UnsupportedSyntax, ctx.Source, init.Position, "class %s: constructor parameter %s is never assigned to self.%s", n.Name, f, f)
		}
	}

	fields := make([]CustomField, len(fieldOrder))
	for i, f := range fieldOrder {
		fields[i] = CustomField{Name: symbol.Intern(f), Type: fieldType[f]}
	}
	return Custom{Name: symbol.Intern(n.Name), Fields: fields, IsException: isException, Message: message}
}

// selfFieldAssignTarget reports whether assign is `self.field = <name>`, the
// only attribute-assignment shape __init__ bodies may contain, and returns
// the field name and the name on the right-hand side.
func selfFieldAssignTarget(assign *ast.Assign) (field, rhsName string, ok bool) {
	if assign.LHS.Object != "self" || assign.LHS.Attr == "" {
		return "", "", false
	}
	rhs, isName := assign.RHS.(*ast.Name)
	if !isName {
		return "", "", false
	}
	return assign.LHS.Attr, rhs.Id, true
}

// selfFieldAssignLiteral reports whether assign is `self.field = "literal"`.
func selfFieldAssignLiteral(assign *ast.Assign, field string) (string, bool) {
	if assign.LHS.Object != "self" || assign.LHS.Attr != field {
		return "", false
	}
	lit, ok := assign.RHS.(*ast.StrLit)
	if !ok {
		return "", false
	}
	return lit.Value, true
}
