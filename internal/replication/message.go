package replication

import "context"

// Process identifies the mutation kind a message carries. Downstream
// consumers treat processing as idempotent by entity id; this layer delivers
// at least once and never deduplicates.
type Process string

const (
	ProcessCompanyUpdate      Process = "companyUpdate"
	ProcessCompanyDelete      Process = "companyDelete"
	ProcessUserUpdate         Process = "userUpdate"
	ProcessUserDelete         Process = "userDelete"
	ProcessProductUnitUpdate  Process = "productUnitUpdate"
	ProcessProductUnitDelete  Process = "productUnitDelete"
	ProcessDocumentTypeUpdate Process = "documentTypeUpdate"
	ProcessDocumentTypeDelete Process = "documentTypeDelete"
)

// Message is the wire envelope. Payload is the JSON-encoded DTO list for
// updates, or a `[{"id":...}]` list for deletes.
type Message struct {
	Source  string  `json:"source"`
	Process Process `json:"process"`
	Payload string  `json:"payload"`
}

func NewMessage(source string, process Process, payload string) Message {
	return Message{
		Source:  source,
		Process: process,
		Payload: payload,
	}
}

// JSONBasic is the delete-message payload item: just the entity identity.
type JSONBasic struct {
	ID string `json:"id"`
}

// Sink abstracts the outbound transport (SNS topics, SQS queues, Redis job
// queues). The returned string is an opaque delivery ack used for logging.
type Sink interface {
	Send(ctx context.Context, msg Message) (string, error)
}
