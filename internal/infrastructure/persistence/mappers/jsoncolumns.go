package mappers

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"tillpoint/internal/domain/permission"
)

func marshalStrings(values []string) (datatypes.JSON, error) {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(data), nil
}

func unmarshalStrings(data datatypes.JSON) ([]string, error) {
	if len(data) == 0 {
		return []string{}, nil
	}
	var out []string
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

// unmarshalPermissions keeps stored tokens that fail validation out of the
// list rather than failing the whole row.
func unmarshalPermissions(data datatypes.JSON) (permission.List, error) {
	raw, err := unmarshalStrings(data)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal permissions: %w", err)
	}
	out := make(permission.List, 0, len(raw))
	for _, s := range raw {
		if p := permission.Permission(s); p.IsValid() {
			out = append(out, p)
		}
	}
	return out, nil
}
