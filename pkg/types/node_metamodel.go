package types

import (
	"fmt"
	"time"
)

// NodeType is the top-level discriminator of a NodeMetamodel (§3).
type NodeType string

const (
	NodeTypeAI   NodeType = "AI"
	NodeTypeTool NodeType = "TOOL"
	NodeTypeFlow NodeType = "FLOW"
)

// ModelType refines NodeTypeAI.
type ModelType string

const (
	ModelTypeLLM        ModelType = "LLM"
	ModelTypeEmbeddings ModelType = "EMBEDDINGS"
)

// ToolType refines NodeTypeTool.
type ToolType string

const (
	ToolTypeREST     ToolType = "REST"
	ToolTypeVectorDB ToolType = "VECTOR_DB"
)

// ControlType refines NodeTypeFlow.
type ControlType string

const (
	ControlTypeGateway ControlType = "GATEWAY"
)

// LLMConfig is the type-specific config for an AI/LLM node (SPEC_FULL §3
// expansion).
type LLMConfig struct {
	Provider             string  `json:"provider"`
	Model                string  `json:"model"`
	Temperature          float64 `json:"temperature"`
	MaxTokens            int     `json:"max_tokens"`
	SystemPromptTemplate string  `json:"system_prompt_template,omitempty"`
}

// EmbeddingsConfig is the type-specific config for an AI/EMBEDDINGS node.
type EmbeddingsConfig struct {
	Provider   string `json:"provider"`
	Model      string `json:"model"`
	Dimensions int    `json:"dimensions"`
}

// RESTConfig is the type-specific config for a TOOL/REST node.
type RESTConfig struct {
	BaseURI   string            `json:"base_uri"`
	Method    string            `json:"method"`
	Headers   map[string]string `json:"headers,omitempty"`
	TimeoutMS int               `json:"timeout_ms"`

	// ClientName, when set, selects a named client from the RESTProcessor's
	// httpclient.Registry (auth, pooling, and default headers configured
	// once per client rather than per node). Empty uses the processor's
	// shared default client.
	ClientName string `json:"client_name,omitempty"`

	// ResponseSchema, when set, is a JSON Schema object the RES_FULL_BODY
	// output is validated against before being written to the context
	// (SPEC_FULL §3 expansion). Nil skips validation.
	ResponseSchema map[string]interface{} `json:"response_schema,omitempty"`
}

// VectorDBConfig is the type-specific config for a TOOL/VECTOR_DB node.
type VectorDBConfig struct {
	CollectionName string `json:"collection_name"`
	TopK           int    `json:"top_k"`
	DistanceMetric string `json:"distance_metric"`
}

// GatewayConfig is the type-specific config for a FLOW/GATEWAY node.
type GatewayConfig struct {
	BranchSelectorPort string `json:"branch_selector_port"`
}

// NodeMetamodel is a versioned, typed description of a computational unit
// (§3). Exactly one of LLM/Embeddings/REST/VectorDB/Gateway is populated,
// selected by Type/ModelType/ToolType/ControlType.
type NodeMetamodel struct {
	ID       string  `json:"id"`
	FamilyID string  `json:"family_id"`
	Version  Version `json:"version"`
	IsLatest bool    `json:"is_latest"`
	Enabled  bool    `json:"enabled"`

	Name                   string `json:"name"`
	Description            string `json:"description"`
	Author                 string `json:"author"`
	QualitativeDescriptor  string `json:"qualitative_descriptor"`

	Type        NodeType    `json:"type"`
	ModelType   ModelType   `json:"model_type,omitempty"`
	ToolType    ToolType    `json:"tool_type,omitempty"`
	ControlType ControlType `json:"control_type,omitempty"`

	InputPorts  []Port `json:"input_ports"`
	OutputPorts []Port `json:"output_ports"`

	LLM        *LLMConfig        `json:"llm_config,omitempty"`
	Embeddings *EmbeddingsConfig `json:"embeddings_config,omitempty"`
	REST       *RESTConfig       `json:"rest_config,omitempty"`
	VectorDB   *VectorDBConfig   `json:"vector_db_config,omitempty"`
	Gateway    *GatewayConfig    `json:"gateway_config,omitempty"`

	// Embedding is the dense vector derived from name+type+description+port
	// keys (§3), used by the node catalog's hybrid search (§6).
	Embedding []float64 `json:"embedding,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Family returns the "<Type>/<refinement>" discriminator used to validate
// port roles (legalRoles) and to dispatch node execution.
func (m NodeMetamodel) Family() string {
	switch m.Type {
	case NodeTypeAI:
		return string(NodeTypeAI) + "/" + string(m.ModelType)
	case NodeTypeTool:
		return string(NodeTypeTool) + "/" + string(m.ToolType)
	case NodeTypeFlow:
		return string(NodeTypeFlow) + "/" + string(m.ControlType)
	default:
		return string(m.Type)
	}
}

// Validate checks the structural invariants named in §3: family id set,
// port keys unique, port roles legal for the node's family, and the
// type-specific config for that family populated. Configs belonging to
// other families are not checked, so a node carrying more than one config
// still passes.
func (m NodeMetamodel) Validate() error {
	if m.FamilyID == "" {
		return ErrMissingFamilyID
	}
	if err := ValidatePortSet(append(append([]Port{}, m.InputPorts...), m.OutputPorts...)); err != nil {
		return err
	}

	family := m.Family()
	for _, p := range m.InputPorts {
		if !IsRoleLegal(family, p.Role) {
			return fmt.Errorf("%w: input port %q has role %q on family %q", ErrInvalidPortRole, p.Key, p.Role, family)
		}
	}
	for _, p := range m.OutputPorts {
		if !IsRoleLegal(family, p.Role) {
			return fmt.Errorf("%w: output port %q has role %q on family %q", ErrInvalidPortRole, p.Key, p.Role, family)
		}
	}

	switch m.Type {
	case NodeTypeAI:
		switch m.ModelType {
		case ModelTypeLLM:
			if m.LLM == nil {
				return fmt.Errorf("%w: AI/LLM node missing llm_config", ErrUnknownModelType)
			}
		case ModelTypeEmbeddings:
			if m.Embeddings == nil {
				return fmt.Errorf("%w: AI/EMBEDDINGS node missing embeddings_config", ErrUnknownModelType)
			}
		default:
			return ErrUnknownModelType
		}
	case NodeTypeTool:
		switch m.ToolType {
		case ToolTypeREST:
			if m.REST == nil {
				return fmt.Errorf("%w: TOOL/REST node missing rest_config", ErrUnknownToolType)
			}
		case ToolTypeVectorDB:
			if m.VectorDB == nil {
				return fmt.Errorf("%w: TOOL/VECTOR_DB node missing vector_db_config", ErrUnknownToolType)
			}
		default:
			return ErrUnknownToolType
		}
	case NodeTypeFlow:
		switch m.ControlType {
		case ControlTypeGateway:
			if m.Gateway == nil {
				return fmt.Errorf("%w: FLOW/GATEWAY node missing gateway_config", ErrUnknownControlType)
			}
		default:
			return ErrUnknownControlType
		}
	default:
		return ErrUnknownNodeType
	}
	return nil
}

// FindInputPort returns the input port with the given key, or nil.
func (m NodeMetamodel) FindInputPort(key string) *Port {
	for i := range m.InputPorts {
		if m.InputPorts[i].Key == key {
			return &m.InputPorts[i]
		}
	}
	return nil
}

// RequiredInputPorts returns the input ports whose schema marks them
// required.
func (m NodeMetamodel) RequiredInputPorts() []Port {
	var out []Port
	for _, p := range m.InputPorts {
		if p.Schema.Required {
			out = append(out, p)
		}
	}
	return out
}
