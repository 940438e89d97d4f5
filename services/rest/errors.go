package restsvc

// Kind classifies a rejected outcome of a dispatched request.
type Kind int

const (
	// KindTransport: no response reached the client (DNS, refused conn, ...).
	KindTransport Kind = iota
	// KindTimeout: the per-call deadline expired before the server settled.
	KindTimeout
	// KindServer: a non-2xx response carrying a structured `message` body.
	KindServer
	// KindUnstructured: a non-2xx response with no parseable message.
	KindUnstructured
	// KindUnauthorized: a 401-class response; the credential was rejected.
	KindUnauthorized
)

// APIError is the single error type escaping the dispatcher: every failure
// mode resolves to one, carrying the best available human-readable message.
type APIError struct {
	Kind    Kind
	Status  int // 0 when no response was received
	Message string
	cause   error
}

func (e *APIError) Error() string { return e.Message }

func (e *APIError) Unwrap() error { return e.cause }

func (e *APIError) Unauthorized() bool { return e.Kind == KindUnauthorized }

func (e *APIError) Timeout() bool { return e.Kind == KindTimeout }
