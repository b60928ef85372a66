// Package schema describes and checks the parameters of an explicitly dispatched action.
//
// Parameters arrive loosely typed, usually from JSON, and are later decoded with
// weak typing. The types here accept what that decoding accepts, so "42" is a
// valid Int and a lone value is a valid one-element Slice:
//
//	s := schema.Schema{
//	    "id":    {Type: schema.Int(), Required: true, Description: "Local element id"},
//	    "shape": {Type: schema.OneOf("box", "sphere")},
//	}
//	if err := schema.Validate(s, params); err != nil {
//	    for _, e := range schema.ValidationErrors(err) { ... }
//	}
//
// A Schema serializes to JSON as a map of parameter name to {type, required,
// description} and parses back through ParseType.
package schema
