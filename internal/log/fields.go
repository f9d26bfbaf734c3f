package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldEntity     = "entity"
	FieldEntityID   = "entity_id"
	FieldCategory   = "category"
	FieldAccount    = "account"
	FieldAmount     = "amount_cents"
	FieldDay        = "day"
	FieldMonth      = "month"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentStorage   = "storage"
	ComponentLedger    = "ledger"
	ComponentRecurring = "recurring"
	ComponentNetWorth  = "networth"
	ComponentBudget    = "budget"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpRead     = "read"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpProcess  = "process"
	OpSnapshot = "snapshot"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
