package registry

import (
	"encoding/json"
	"time"
)

// officialMetaKey is the namespaced _meta key the registry nests its own
// metadata under.
const officialMetaKey = "io.modelcontextprotocol.registry/official"

// Server statuses used by the registry.
const (
	StatusActive     = "active"
	StatusDeprecated = "deprecated"
	StatusDeleted    = "deleted"
)

// Server is one MCP server entry as returned by the registry API.
type Server struct {
	Schema      string     `json:"$schema,omitempty"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Status      string     `json:"status,omitempty"`
	Version     string     `json:"version"`
	Repository  Repository `json:"repository"`
	Remotes     []Remote   `json:"remotes,omitempty"`
	Packages    []Package  `json:"packages,omitempty"`
	Meta        ServerMeta `json:"_meta"`
}

// Active reports whether the server carries the "active" status.
func (s *Server) Active() bool {
	return s.Status == StatusActive
}

// ID returns the registry-assigned server ID from the official metadata.
func (s *Server) ID() string {
	return s.Meta.Official.ID
}

// Repository describes where a server's source lives.
type Repository struct {
	URL       string `json:"url"`
	Source    string `json:"source"`
	ID        string `json:"id,omitempty"`
	Subfolder string `json:"subfolder,omitempty"`
}

// Remote is a hosted endpoint for a server.
type Remote struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// Package describes an installable distribution of a server.
type Package struct {
	RegistryType     string                `json:"registry_type"`
	Identifier       string                `json:"identifier"`
	Version          string                `json:"version"`
	RegistryBaseURL  string                `json:"registry_base_url,omitempty"`
	RuntimeHint      string                `json:"runtime_hint,omitempty"`
	FileSHA256       string                `json:"file_sha256,omitempty"`
	Transport        *Transport            `json:"transport,omitempty"`
	EnvironmentVars  []EnvironmentVariable `json:"environment_variables,omitempty"`
	PackageArguments []PackageArgument     `json:"package_arguments,omitempty"`
}

// Transport is how a package's server is spoken to once running.
type Transport struct {
	Type string `json:"type"`
	// URL may contain placeholder templates, so it is not validated here.
	URL string `json:"url,omitempty"`
}

// EnvironmentVariable is a configuration knob a package expects.
type EnvironmentVariable struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsRequired  bool   `json:"is_required,omitempty"`
	IsSecret    bool   `json:"is_secret,omitempty"`
	Format      string `json:"format,omitempty"`
}

// PackageArgument is a command-line argument a package accepts.
type PackageArgument struct {
	Name        string `json:"name,omitempty"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Format      string `json:"format,omitempty"`
	IsRequired  bool   `json:"is_required,omitempty"`
	Default     any    `json:"default,omitempty"`
	Value       string `json:"value,omitempty"`
}

// ServerMeta is the _meta envelope around the official registry metadata.
// The official block sits under a namespaced key, so (un)marshalling goes
// through a map rather than struct tags.
type ServerMeta struct {
	Official OfficialMeta
}

// MarshalJSON writes the official block under its namespaced key.
func (m ServerMeta) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]OfficialMeta{officialMetaKey: m.Official})
}

// UnmarshalJSON reads the official block from its namespaced key and
// ignores any other vendor namespaces present.
func (m *ServerMeta) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if official, ok := raw[officialMetaKey]; ok {
		return json.Unmarshal(official, &m.Official)
	}
	return nil
}

// OfficialMeta is the registry-maintained metadata for a server entry.
type OfficialMeta struct {
	ID          string    `json:"id"`
	PublishedAt time.Time `json:"published_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	IsLatest    bool      `json:"is_latest"`
}

// SearchResponse is the payload of GET /v0/servers.
type SearchResponse struct {
	Servers []Server `json:"servers"`
}

// apiError is the registry's JSON error body.
type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func (e apiError) text() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}
