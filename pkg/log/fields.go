package log

const (
	// Request
	FieldRequestID = "request_id"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldLatency   = "latency_ms"
	FieldClientIP  = "client_ip"

	// Caller identity, set by pkg/middleware from the JWT subject
	FieldSubject = "subject"

	// Service
	FieldService = "service"

	// gRPC
	FieldGRPCMethod = "grpc_method"
	FieldGRPCCode   = "grpc_code"

	// Streams
	FieldStreamID   = "stream_id"
	FieldGeneration = "generation"
	FieldPinIndex   = "pin_index"
	FieldCount      = "count"
	FieldSpaceSize  = "space_size"
	FieldDriver     = "driver"
	FieldEventID    = "event_id"
)
