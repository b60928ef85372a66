package schema

// Validate checks data against the schema. Missing required parameters,
// mistyped values and parameters the schema does not name are all reported.
// A nil value counts as missing.
func Validate(s Schema, data map[string]any) error {
	var errs []error

	for _, name := range s.Names() {
		field := s[name]
		value, ok := data[name]
		if !ok || value == nil {
			if field.Required {
				errs = append(errs, &ValidationError{Key: name, Reason: "required"})
			}
			continue
		}
		if field.Type == nil {
			continue
		}
		if err := field.Type.Validate(value); err != nil {
			errs = append(errs, &ValidationError{Key: name, Reason: err.Error(), Value: value})
		}
	}

	extra := make([]string, 0)
	for name := range data {
		if _, known := s[name]; !known {
			extra = append(extra, name)
		}
	}
	for _, name := range sortStrings(extra) {
		errs = append(errs, &ValidationError{Key: name, Reason: "unknown parameter", Value: data[name]})
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}
