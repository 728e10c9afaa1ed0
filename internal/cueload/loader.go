// Package cueload parses CUE model files into type declarations for the
// schema registry.
//
// A model file declares types under a top-level `types` struct:
//
//	types: {
//		Named: {
//			methods: [
//				{name: "Name", returns: "string", abstract: true},
//			]
//		}
//		Person: {
//			extends: ["Named"]
//			methods: [
//				{name: "SetName", params: ["string"], abstract: true},
//			]
//		}
//	}
//
// Field order in the file is the schema extraction order.
package cueload

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/token"

	"github.com/modelcore/structbind/internal/schema"
)

// LoadError reports a malformed model file with its CUE position when
// available.
type LoadError struct {
	Path    string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// LoadFile parses the CUE model file at path into type declarations in file
// order.
func LoadFile(path string) ([]schema.TypeDecl, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Message: fmt.Sprintf("reading model file: %v", err)}
	}
	decls, err := LoadString(string(src))
	if err != nil {
		if le, ok := err.(*LoadError); ok && le.Path == "" {
			le.Path = path
		}
		return nil, err
	}
	return decls, nil
}

// LoadString parses CUE source into type declarations.
func LoadString(src string) ([]schema.TypeDecl, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(src)
	if err := v.Err(); err != nil {
		return nil, &LoadError{Message: fmt.Sprintf("compiling model: %v", err)}
	}

	typesVal := v.LookupPath(cue.ParsePath("types"))
	if !typesVal.Exists() {
		return nil, &LoadError{Message: "model must declare a top-level 'types' struct", Pos: v.Pos()}
	}

	iter, err := typesVal.Fields()
	if err != nil {
		return nil, &LoadError{Message: fmt.Sprintf("'types' must be a struct: %v", err), Pos: typesVal.Pos()}
	}

	var decls []schema.TypeDecl
	for iter.Next() {
		decl, err := parseTypeDecl(iter.Selector().String(), iter.Value())
		if err != nil {
			return nil, err
		}
		decls = append(decls, decl)
	}
	return decls, nil
}

func parseTypeDecl(name string, v cue.Value) (schema.TypeDecl, error) {
	decl := schema.TypeDecl{Name: name}

	if kindVal := v.LookupPath(cue.ParsePath("kind")); kindVal.Exists() {
		kind, err := kindVal.String()
		if err != nil {
			return decl, &LoadError{Message: fmt.Sprintf("type %q: kind must be a string: %v", name, err), Pos: kindVal.Pos()}
		}
		decl.Kind = schema.ValueKind(kind)
		if !schema.ValidKinds[decl.Kind] {
			return decl, &LoadError{Message: fmt.Sprintf("type %q: invalid kind %q", name, kind), Pos: kindVal.Pos()}
		}
	}

	var err error
	if decl.Extends, err = stringList(v.LookupPath(cue.ParsePath("extends"))); err != nil {
		return decl, &LoadError{Message: fmt.Sprintf("type %q: %v", name, err), Pos: v.Pos()}
	}

	methodsVal := v.LookupPath(cue.ParsePath("methods"))
	if methodsVal.Exists() {
		list, err := methodsVal.List()
		if err != nil {
			return decl, &LoadError{Message: fmt.Sprintf("type %q: methods must be a list: %v", name, err), Pos: methodsVal.Pos()}
		}
		for list.Next() {
			m, err := parseMethodDecl(name, list.Value())
			if err != nil {
				return decl, err
			}
			decl.Methods = append(decl.Methods, m)
		}
	}
	return decl, nil
}

func parseMethodDecl(typeName string, v cue.Value) (schema.MethodDecl, error) {
	var m schema.MethodDecl

	nameVal := v.LookupPath(cue.ParsePath("name"))
	if !nameVal.Exists() {
		return m, &LoadError{Message: fmt.Sprintf("type %q: method declaration missing name", typeName), Pos: v.Pos()}
	}
	name, err := nameVal.String()
	if err != nil {
		return m, &LoadError{Message: fmt.Sprintf("type %q: method name must be a string: %v", typeName, err), Pos: nameVal.Pos()}
	}
	m.Name = name

	if m.Params, err = stringList(v.LookupPath(cue.ParsePath("params"))); err != nil {
		return m, &LoadError{Message: fmt.Sprintf("type %q: method %q: %v", typeName, name, err), Pos: v.Pos()}
	}
	if retVal := v.LookupPath(cue.ParsePath("returns")); retVal.Exists() {
		if m.Returns, err = retVal.String(); err != nil {
			return m, &LoadError{Message: fmt.Sprintf("type %q: method %q: returns must be a string: %v", typeName, name, err), Pos: retVal.Pos()}
		}
	}
	if m.Abstract, err = boolField(v, "abstract"); err != nil {
		return m, &LoadError{Message: fmt.Sprintf("type %q: method %q: %v", typeName, name, err), Pos: v.Pos()}
	}
	if m.Final, err = boolField(v, "final"); err != nil {
		return m, &LoadError{Message: fmt.Sprintf("type %q: method %q: %v", typeName, name, err), Pos: v.Pos()}
	}
	if m.Unmanaged, err = boolField(v, "unmanaged"); err != nil {
		return m, &LoadError{Message: fmt.Sprintf("type %q: method %q: %v", typeName, name, err), Pos: v.Pos()}
	}
	return m, nil
}

func stringList(v cue.Value) ([]string, error) {
	if !v.Exists() {
		return nil, nil
	}
	list, err := v.List()
	if err != nil {
		return nil, fmt.Errorf("expected a list of strings: %v", err)
	}
	var out []string
	for list.Next() {
		s, err := list.Value().String()
		if err != nil {
			return nil, fmt.Errorf("expected a string element: %v", err)
		}
		out = append(out, s)
	}
	return out, nil
}

func boolField(v cue.Value, field string) (bool, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return false, nil
	}
	b, err := fv.Bool()
	if err != nil {
		return false, fmt.Errorf("%s must be a bool: %v", field, err)
	}
	return b, nil
}
