package pruner

import (
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Source documents are heterogeneous: any entry may be direct, indirect, the
// wrong type, or missing. These accessors resolve and type-check in one step
// and report absence instead of failing, so the passes can skip structurally.

func derefObject(doc *model.Context, obj types.Object) (types.Object, bool) {
	if obj == nil {
		return nil, false
	}
	o, err := doc.Dereference(obj)
	if err != nil || o == nil {
		return nil, false
	}
	return o, true
}

func derefDict(doc *model.Context, obj types.Object) (types.Dict, bool) {
	o, ok := derefObject(doc, obj)
	if !ok {
		return nil, false
	}
	d, ok := o.(types.Dict)
	return d, ok
}

func derefArray(doc *model.Context, obj types.Object) (types.Array, bool) {
	o, ok := derefObject(doc, obj)
	if !ok {
		return nil, false
	}
	a, ok := o.(types.Array)
	return a, ok
}

func derefInt(doc *model.Context, obj types.Object) (int, bool) {
	o, ok := derefObject(doc, obj)
	if !ok {
		return 0, false
	}
	switch v := o.(type) {
	case types.Integer:
		return int(v), true
	case types.Float:
		return int(v), true
	}
	return 0, false
}

func derefName(doc *model.Context, obj types.Object) (string, bool) {
	o, ok := derefObject(doc, obj)
	if !ok {
		return "", false
	}
	n, ok := o.(types.Name)
	return string(n), ok
}

func derefString(doc *model.Context, obj types.Object) (string, bool) {
	o, ok := derefObject(doc, obj)
	if !ok {
		return "", false
	}
	switch v := o.(type) {
	case types.StringLiteral:
		if s, err := types.StringLiteralToString(v); err == nil {
			return s, true
		}
		return v.Value(), true
	case types.HexLiteral:
		if s, err := types.HexLiteralToString(v); err == nil {
			return s, true
		}
		return v.Value(), true
	}
	return "", false
}

// stringEntry resolves a string-valued dictionary entry.
func stringEntry(doc *model.Context, d types.Dict, key string) (string, bool) {
	obj, found := d.Find(key)
	if !found {
		return "", false
	}
	return derefString(doc, obj)
}
