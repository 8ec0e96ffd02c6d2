package server

// MessageType names a websocket message.
type MessageType string

const (
	// Client to server
	MessageTypeHello    MessageType = "hello"
	MessageTypeEvaluate MessageType = "evaluate"
	MessageTypeValidate MessageType = "validate"
	MessageTypeScore    MessageType = "score"
	MessageTypeSearch   MessageType = "search"
	MessageTypeDeal     MessageType = "deal"
	MessageTypeSubmit   MessageType = "submit"

	// Server to client
	MessageTypeWelcome     MessageType = "welcome"
	MessageTypeEvaluation  MessageType = "evaluation"
	MessageTypeVerdict     MessageType = "verdict"
	MessageTypeScoreResult MessageType = "score_result"
	MessageTypeArrangement MessageType = "arrangement"
	MessageTypeDealt       MessageType = "dealt"
	MessageTypeRoundResult MessageType = "round_result"
	MessageTypeError       MessageType = "error"
)

func (mt MessageType) String() string {
	return string(mt)
}
