package types

import (
	"fmt"
	"strconv"
	"strings"
)

// PortRole describes the purpose a port plays within its owning node
// family. Roles are validated against the node's Type/ModelType/ToolType/
// ControlType at create-time (§3: "each port's role must be legal for the
// node type").
type PortRole string

const (
	// LLM node roles
	PortRoleUserPrompt           PortRole = "USER_PROMPT"
	PortRoleSystemPromptVariable PortRole = "SYSTEM_PROMPT_VARIABLE"
	PortRoleResponse             PortRole = "RESPONSE"

	// HTTP (REST tool) node roles
	PortRoleReqBody           PortRole = "REQ_BODY"
	PortRoleReqBodyField      PortRole = "REQ_BODY_FIELD"
	PortRoleReqHeader         PortRole = "REQ_HEADER"
	PortRoleReqQueryParameter PortRole = "REQ_QUERY_PARAMETER"
	PortRoleReqPathVariable   PortRole = "REQ_PATH_VARIABLE"
	PortRoleResFullBody       PortRole = "RES_FULL_BODY"
	PortRoleResBodyField      PortRole = "RES_BODY_FIELD"
	PortRoleResStatus         PortRole = "RES_STATUS"
	PortRoleResHeaders        PortRole = "RES_HEADERS"

	// Vector DB tool node roles
	PortRoleInputVector PortRole = "INPUT_VECTOR"
	PortRoleResults      PortRole = "RESULTS"
	PortRoleFirstResult   PortRole = "FIRST_RESULT"

	// Embeddings node roles
	PortRoleInputText    PortRole = "INPUT_TEXT"
	PortRoleOutputVector PortRole = "OUTPUT_VECTOR"
)

// legalRoles enumerates which roles are legal for which node family. The
// map is keyed by a family discriminator computed from NodeMetamodel's
// Type/ModelType/ToolType/ControlType (see NodeMetamodel.Family).
var legalRoles = map[string]map[PortRole]bool{
	"AI/LLM": {
		PortRoleUserPrompt: true, PortRoleSystemPromptVariable: true, PortRoleResponse: true,
	},
	"AI/EMBEDDINGS": {
		PortRoleInputText: true, PortRoleOutputVector: true,
	},
	"TOOL/REST": {
		PortRoleReqBody: true, PortRoleReqBodyField: true, PortRoleReqHeader: true,
		PortRoleReqQueryParameter: true, PortRoleReqPathVariable: true,
		PortRoleResFullBody: true, PortRoleResBodyField: true, PortRoleResStatus: true,
		PortRoleResHeaders: true,
	},
	"TOOL/VECTOR_DB": {
		PortRoleInputVector: true, PortRoleResults: true, PortRoleFirstResult: true,
	},
	"FLOW/GATEWAY": {
		// Gateway nodes pass values through unchanged; any role that already
		// exists elsewhere may be reused to describe a pass-through port.
		PortRoleResponse: true, PortRoleResFullBody: true,
	},
}

// IsRoleLegal reports whether role is permitted on a node of the given
// family discriminator (see NodeMetamodel.Family).
func IsRoleLegal(family string, role PortRole) bool {
	roles, ok := legalRoles[family]
	if !ok {
		return false
	}
	return roles[role]
}

// SchemaKind is the tag of the PortSchema tagged union (§3, §9: "Implement
// as a tagged union").
type SchemaKind string

const (
	SchemaString SchemaKind = "STRING"
	SchemaInt    SchemaKind = "INT"
	SchemaFloat  SchemaKind = "FLOAT"
	SchemaBool   SchemaKind = "BOOL"
	SchemaDate   SchemaKind = "DATE"
	SchemaObject SchemaKind = "OBJECT"
	SchemaArray  SchemaKind = "ARRAY"
)

// PortSchema is a tagged structural type with a required flag, mirroring
// spec §3. Object/Array carry nested schemas.
type PortSchema struct {
	Kind       SchemaKind            `json:"kind"`
	Required   bool                  `json:"required"`
	Properties map[string]PortSchema `json:"properties,omitempty"` // OBJECT
	Items      *PortSchema           `json:"items,omitempty"`      // ARRAY
}

// Port is a typed input/output slot on a node (§3).
type Port struct {
	Key     string      `json:"key"`
	Schema  PortSchema  `json:"schema"`
	Role    PortRole    `json:"role"`
	Default interface{} `json:"default,omitempty"`
	HasDefault bool     `json:"has_default,omitempty"`
}

// ValidatePortSet checks port-key uniqueness within a single node, per the
// NodeMetamodel invariant "port keys are unique within a node".
func ValidatePortSet(ports []Port) error {
	seen := make(map[string]bool, len(ports))
	for _, p := range ports {
		if p.Key == "" {
			return ErrMissingPortKey
		}
		if seen[p.Key] {
			return fmt.Errorf("%w: %s", ErrDuplicatePortKey, p.Key)
		}
		seen[p.Key] = true
	}
	return nil
}

// IsValidValue implements PortSchema's tolerant validator (§3: "tolerant
// conversion: numeric strings accepted as numbers, comma-separated strings
// accepted as numeric vectors"). It is total: every (schema, value) pair
// returns a definite true/false, never panics.
func (s PortSchema) IsValidValue(v interface{}) bool {
	if v == nil {
		return !s.Required
	}
	switch s.Kind {
	case SchemaString:
		_, ok := v.(string)
		return ok
	case SchemaInt:
		return isIntLike(v)
	case SchemaFloat:
		return isFloatLike(v)
	case SchemaBool:
		return isBoolLike(v)
	case SchemaDate:
		return isDateLike(v)
	case SchemaObject:
		m, ok := v.(map[string]interface{})
		if !ok {
			return false
		}
		for key, propSchema := range s.Properties {
			val, present := m[key]
			if !present {
				if propSchema.Required {
					return false
				}
				continue
			}
			if !propSchema.IsValidValue(val) {
				return false
			}
		}
		return true
	case SchemaArray:
		return isArrayLike(v, s.Items)
	default:
		return false
	}
}

func isIntLike(v interface{}) bool {
	switch n := v.(type) {
	case int, int32, int64:
		return true
	case float64:
		return n == float64(int64(n))
	case float32:
		return float64(n) == float64(int64(n))
	case string:
		_, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		return err == nil
	default:
		return false
	}
}

func isFloatLike(v interface{}) bool {
	switch n := v.(type) {
	case int, int32, int64, float32, float64:
		return true
	case string:
		_, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return err == nil
	default:
		return false
	}
}

func isBoolLike(v interface{}) bool {
	switch b := v.(type) {
	case bool:
		return true
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "yes", "1", "false", "no", "0", "":
			return true
		}
	}
	return false
}

func isDateLike(v interface{}) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	layouts := []string{"2006-01-02", "2006-01-02T15:04:05Z07:00", "2006-01-02T15:04:05"}
	for _, l := range layouts {
		if _, err := parseTimeLayout(l, s); err == nil {
			return true
		}
	}
	return false
}

// isArrayLike accepts native slices as well as the comma-separated-string
// tolerance called out in §3 ("comma-separated strings accepted as numeric
// vectors").
func isArrayLike(v interface{}, items *PortSchema) bool {
	switch arr := v.(type) {
	case []interface{}:
		if items == nil {
			return true
		}
		for _, el := range arr {
			if !items.IsValidValue(el) {
				return false
			}
		}
		return true
	case string:
		if items == nil {
			return true
		}
		parts := strings.Split(arr, ",")
		for _, part := range parts {
			if !items.IsValidValue(strings.TrimSpace(part)) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
