package domain

// ArgType enumerates the argument schema types a descriptor may declare.
type ArgType string

const (
	ArgString  ArgType = "string"
	ArgInteger ArgType = "integer"
	ArgBoolean ArgType = "boolean"
)

// ArgSpec describes one accepted argument of a tool.
type ArgSpec struct {
	Type        ArgType
	Required    bool
	Default     any
	Description string
}

// ResultShape names the upstream response fields that survive
// normalization. An empty Fields slice means every top-level field
// except the envelope ("ok", "response_metadata") is kept.
type ResultShape struct {
	Fields []string
	// CursorField is a dotted path to the pagination cursor, usually
	// "response_metadata.next_cursor". Empty for unpaginated endpoints.
	CursorField string
}

// Descriptor is one row of the endpoint catalog: everything the
// dispatcher needs to translate a tool invocation into an upstream call.
// Descriptors are built once at init and never mutated.
type Descriptor struct {
	Name        string
	Description string
	// Endpoint is the upstream Web API method, e.g. "conversations.list".
	Endpoint   string
	HTTPMethod string
	// Mutating endpoints are never auto-retried on ambiguous transport
	// failure after the request body was sent.
	Mutating bool
	// MinKind is TokenKindBot (any credential) or TokenKindUser
	// (user-class credential required, e.g. search).
	MinKind TokenKind
	Args    map[string]ArgSpec
	Result  ResultShape
}

// Result is the normalized success value handed back to the transport.
type Result struct {
	Fields map[string]any
	// NextCursor is surfaced rather than auto-followed; the caller
	// decides whether to request further pages.
	NextCursor string
}
