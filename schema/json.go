package schema

import (
	"encoding/json"

	"github.com/kungfusheep/thriftbin/errs"
)

// FromJSON builds a Descriptor from the structured-spec JSON form of
// spec §4.3: either a bare JSON string naming a scalar type, or a JSON
// object with the {ttype, name, fields, key, value, i64string,
// i64tensor, tensors} keys. Unknown object keys are ignored, per spec.
func FromJSON(data []byte) (*Descriptor, error) {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		return BuildName(name)
	}

	var spec Spec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, errs.Wrapf(errs.ErrSchemaError, "invalid schema JSON: %v", err)
	}
	return Build(spec)
}
