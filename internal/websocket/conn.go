package websocket

// Conn is the subset of *gorilla/websocket.Conn the read/write pumps
// use. Narrowing it here lets the hub tests run without real sockets.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}
