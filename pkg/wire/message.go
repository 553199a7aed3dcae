package wire

// Reserved event parameter keys.
const (
	// SenderKey holds the actor number of the event's originator.
	SenderKey byte = 254

	// CustomDataKey holds the application payload of a custom event.
	CustomDataKey byte = 245
)

// ParameterDictionary maps one-byte parameter keys to wire values.
type ParameterDictionary map[byte]any

// Hashtable is the loosely typed map: keys and values each carry their
// own tag on the wire.
type Hashtable map[any]any

// OperationRequest is an operation sent from the client to the server.
type OperationRequest struct {
	OperationCode byte
	Parameters    ParameterDictionary
}

// OperationResponse is the server's answer to an OperationRequest.
type OperationResponse struct {
	OperationCode byte
	ReturnCode    int16
	DebugMessage  string
	Parameters    ParameterDictionary
}

// Get returns the parameter stored under key.
func (r *OperationResponse) Get(key byte) any {
	return r.Parameters[key]
}

// IsSuccess reports whether the return code is zero.
func (r *OperationResponse) IsSuccess() bool {
	return r.ReturnCode == 0
}

// EventData is a server-initiated message.
type EventData struct {
	Code       byte
	Parameters ParameterDictionary
}

// Get returns the parameter stored under key.
func (e *EventData) Get(key byte) any {
	return e.Parameters[key]
}

// Sender returns the actor number stored under SenderKey, or -1 if the
// event carries none.
func (e *EventData) Sender() int32 {
	switch v := e.Parameters[SenderKey].(type) {
	case int32:
		return v
	case byte:
		return int32(v)
	case int16:
		return int32(v)
	case int64:
		return int32(v)
	}
	return -1
}

// CustomData returns the value stored under CustomDataKey.
func (e *EventData) CustomData() any {
	return e.Parameters[CustomDataKey]
}
