package runtime

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/risor-io/risor/object"

	"github.com/jward/cdecl/internal/model"
)

// Catalog entities reach scripts as plain Risor maps rather than proxies,
// so scripts index them with m["name"] and can pass them back to emit()
// or Risor's json module unchanged.

// makeSetFn creates a zero-argument host function returning one set as a
// list of entity maps, in set order.
func makeSetFn(name string, c *model.Catalog, kind model.Kind) *object.Builtin {
	return object.NewBuiltin(name, func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 0 {
			return object.NewArgsError(name, 0, len(args))
		}
		return setObject(c, kind)
	})
}

// makeLookupFn creates the "lookup" host function.
//
// lookup(kind, name) → map or nil
//
// kind is a set name as used in export file names: "enums", "structs",
// "functions", "typedefs", "functionpointers" or "macros".
func makeLookupFn(c *model.Catalog) *object.Builtin {
	return object.NewBuiltin("lookup", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 2 {
			return object.NewArgsError("lookup", 2, len(args))
		}
		kind, err := toString(args[0])
		if err != nil {
			return object.Errorf("lookup: kind: %v", err)
		}
		name, err := toString(args[1])
		if err != nil {
			return object.Errorf("lookup: name: %v", err)
		}
		obj, err := lookupObject(c, model.Kind(kind), name)
		if err != nil {
			return object.Errorf("lookup: %v", err)
		}
		return obj
	})
}

// makeEmitFn creates the "emit" host function. Arguments are written to
// out back to back; strings verbatim, anything else in its inspected form.
//
// emit(text, ...) → nil
func makeEmitFn(out io.Writer) *object.Builtin {
	return object.NewBuiltin("emit", func(ctx context.Context, args ...object.Object) object.Object {
		for _, arg := range args {
			var text string
			if s, ok := arg.(*object.String); ok {
				text = s.Value()
			} else {
				text = arg.Inspect()
			}
			if _, err := io.WriteString(out, text); err != nil {
				return object.Errorf("emit: %v", err)
			}
		}
		return object.Nil
	})
}

func setObject(c *model.Catalog, kind model.Kind) object.Object {
	var items []object.Object
	switch kind {
	case model.KindEnum:
		for _, e := range c.Enums.Items {
			items = append(items, enumObject(e))
		}
	case model.KindStruct:
		for _, s := range c.Structs.Items {
			items = append(items, structObject(s))
		}
	case model.KindFunction:
		for _, f := range c.Functions.Items {
			items = append(items, functionObject(f))
		}
	case model.KindTypeDef:
		for _, t := range c.TypeDefs.Items {
			items = append(items, typedefObject(t))
		}
	case model.KindFunctionPointer:
		for _, f := range c.FunctionPointers.Items {
			items = append(items, functionObject(f))
		}
	case model.KindMacro:
		for _, m := range c.Macros.Items {
			items = append(items, object.NewMap(map[string]object.Object{"name": object.NewString(m.Name)}))
		}
	}
	if items == nil {
		items = []object.Object{}
	}
	return object.NewList(items)
}

func lookupObject(c *model.Catalog, kind model.Kind, name string) (object.Object, error) {
	switch kind {
	case model.KindEnum:
		if e, ok := c.Enums.Get(name); ok {
			return enumObject(e), nil
		}
	case model.KindStruct:
		if s, ok := c.Structs.Get(name); ok {
			return structObject(s), nil
		}
	case model.KindFunction:
		if f, ok := c.Functions.Get(name); ok {
			return functionObject(f), nil
		}
	case model.KindTypeDef:
		if t, ok := c.TypeDefs.Get(name); ok {
			return typedefObject(t), nil
		}
	case model.KindFunctionPointer:
		if f, ok := c.FunctionPointers.Get(name); ok {
			return functionObject(f), nil
		}
	case model.KindMacro:
		if m, ok := c.Macros.Get(name); ok {
			return object.NewMap(map[string]object.Object{"name": object.NewString(m.Name)}), nil
		}
	default:
		return nil, fmt.Errorf("unknown kind %q", kind)
	}
	return object.Nil, nil
}

func typeObject(t model.TypeRef) object.Object {
	return object.NewMap(map[string]object.Object{
		"name":         object.NewString(t.Name),
		"primitive":    object.NewString(t.Primitive.String()),
		"array_length": object.NewInt(t.ArrayLength),
	})
}

func structObject(s model.Struct) object.Object {
	fields := make([]object.Object, 0, len(s.Fields))
	for _, f := range s.Fields {
		fields = append(fields, object.NewMap(map[string]object.Object{
			"name": object.NewString(f.Name),
			"type": typeObject(f.Type),
		}))
	}
	return object.NewMap(map[string]object.Object{
		"name":   object.NewString(s.Name),
		"fields": object.NewList(fields),
	})
}

func functionObject(f model.Function) object.Object {
	params := make([]object.Object, 0, len(f.Params))
	for _, p := range f.Params {
		params = append(params, object.NewMap(map[string]object.Object{
			"name": object.NewString(p.Name),
			"type": typeObject(p.Type),
		}))
	}
	return object.NewMap(map[string]object.Object{
		"name":   object.NewString(f.Name),
		"return": typeObject(f.Return),
		"params": object.NewList(params),
	})
}

func typedefObject(t model.TypeDef) object.Object {
	return object.NewMap(map[string]object.Object{
		"name": object.NewString(t.Name),
		"type": typeObject(t.Type),
	})
}

// enumObject exposes each member's value as an int plus its exact decimal
// text. Unsigned values above the int64 range wrap in the int form.
func enumObject(e model.Enum) object.Object {
	members := make([]object.Object, 0, len(e.Members))
	for _, m := range e.Members {
		var value int64
		var text string
		switch {
		case m.Unsigned != nil:
			value = int64(*m.Unsigned)
			text = strconv.FormatUint(*m.Unsigned, 10)
		case m.Signed != nil:
			value = *m.Signed
			text = strconv.FormatInt(*m.Signed, 10)
		}
		members = append(members, object.NewMap(map[string]object.Object{
			"name":  object.NewString(m.Name),
			"value": object.NewInt(value),
			"text":  object.NewString(text),
		}))
	}
	return object.NewMap(map[string]object.Object{
		"name":     object.NewString(e.Name),
		"type":     typeObject(e.Type),
		"unsigned": object.NewBool(e.Unsigned),
		"members":  object.NewList(members),
	})
}

func toString(obj object.Object) (string, error) {
	if s, ok := obj.(*object.String); ok {
		return s.Value(), nil
	}
	return "", fmt.Errorf("expected string, got %s", obj.Type())
}
