package ir

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strconv"
)

// FieldError reports a required field that is absent or null.
type FieldError struct {
	Path string // JSON pointer of the missing field
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: missing required field", e.Path)
}

type fieldSpec struct {
	required bool
	shape    string // nested object shape; "" for scalars and scalar lists
	list     bool
}

var (
	opt = fieldSpec{}
	req = fieldSpec{required: true}
)

// shapes lists the exact keys of every IR object. Guards resolve their
// shape from the "type" discriminant.
var shapes = map[string]map[string]fieldSpec{
	"ir": {
		"version": req,
		"module":  {required: true, shape: "module"},
	},
	"module": {
		"name":        req,
		"context":     opt,
		"intent":      {shape: "intent"},
		"constraints": {shape: "constraints"},
		"signals":     {shape: "signal", list: true},
		"coils":       {shape: "coil", list: true},
		"rungs":       {shape: "rung", list: true},
		"blocks":      {shape: "block", list: true},
		"networks":    {shape: "network", list: true},
	},
	"intent": {"goal": opt},
	"constraints": {
		"data_privacy": {shape: "data_privacy"},
		"quality":      {shape: "quality"},
		"cost":         {shape: "cost"},
	},
	"data_privacy": {"jurisdiction": opt, "pii_handling": opt},
	"quality":      {"min_precision": opt, "min_recall": opt},
	"cost":         {"max_cost_per_submission": opt},
	"signal":       {"name": req, "parameters": opt, "type": opt},
	"coil":         {"name": req, "parameters": opt, "latching": opt, "critical": opt},
	"rung": {
		"name":    req,
		"guard":   {required: true, shape: "guard"},
		"actions": {required: true, shape: "action", list: true},
	},
	"action":  {"type": req, "coil": req, "arguments": opt},
	"contact": {"type": req, "name": req, "contact_type": req, "arguments": opt},
	"binary": {
		"type":  req,
		"left":  {required: true, shape: "guard"},
		"right": {required: true, shape: "guard"},
	},
	"not": {
		"type": req,
		"expr": {required: true, shape: "guard"},
	},
	"block": {
		"name":    req,
		"inputs":  {shape: "port", list: true},
		"outputs": {shape: "port", list: true},
		"effect":  opt,
	},
	"port": {"name": req, "type": req},
	"network": {
		"name":    req,
		"wires":   {shape: "wire", list: true},
		"outputs": {shape: "output", list: true},
	},
	"wire":   {"source": req, "target": req},
	"output": {"name": req, "source": req},
}

// FromValue decodes a generic JSON value (as produced by encoding/json
// into any) into an IR. Keys match exactly: keys the IR does not define,
// including case variants of defined ones, are ignored, and every
// required field must be present and non-null.
func FromValue(value any) (*IR, error) {
	cleaned, err := conform(value, "ir", "")
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(cleaned)
	if err != nil {
		return nil, fmt.Errorf("re-encode document: %w", err)
	}
	var out IR
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// conform returns a copy of v holding only the keys defined for shape.
// Keys are checked in sorted order so the reported field is stable. Values of the wrong JSON type are passed through for json.Unmarshal to
// reject.
func conform(v any, shape, path string) (any, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return v, nil
	}
	if shape == "guard" {
		shape = guardShape(obj)
		if shape == "" {
			return v, nil
		}
	}

	fields := shapes[shape]
	out := make(map[string]any, len(fields))
	for _, key := range slices.Sorted(maps.Keys(fields)) {
		f := fields[key]
		child, present := obj[key]
		if !present || child == nil {
			if f.required {
				return nil, &FieldError{Path: path + "/" + key}
			}
			if present {
				out[key] = nil
			}
			continue
		}

		var err error
		switch {
		case f.shape == "":
			out[key] = child
		case f.list:
			out[key], err = conformList(child, f.shape, path+"/"+key)
		default:
			out[key], err = conform(child, f.shape, path+"/"+key)
		}
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func conformList(v any, shape, path string) (any, error) {
	items, ok := v.([]any)
	if !ok {
		return v, nil
	}
	out := make([]any, len(items))
	for i, item := range items {
		c, err := conform(item, shape, path+"/"+strconv.Itoa(i))
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

// guardShape picks the shape for a guard object. Unknown or missing
// discriminants yield "" and are left to UnmarshalGuard to report.
func guardShape(obj map[string]any) string {
	kind, _ := obj["type"].(string)
	switch GuardKind(kind) {
	case GuardContact:
		return "contact"
	case GuardAnd, GuardOr:
		return "binary"
	case GuardNot:
		return "not"
	default:
		return ""
	}
}
