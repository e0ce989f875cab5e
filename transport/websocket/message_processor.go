package websocket

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
	"github.com/rocketscienceinc/gomoku-backend/internal/room"
)

// frame represents a WebSocket frame and its metadata.
type frame struct {
	isFin   bool   // whether this frame is the final one of the message
	opCode  byte   // operation code (text, binary, close, ...)
	length  uint64 // payload length
	payload []byte // frame payload
}

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Payload is the client-side request body; which fields are set depends on
// the action.
type Payload struct {
	Player     *entity.Player   `json:"player,omitempty"`
	Room       string           `json:"room,omitempty"`
	Mode       string           `json:"mode,omitempty"`
	Difficulty string           `json:"difficulty,omitempty"`
	Move       *entity.Position `json:"move,omitempty"`
	Text       string           `json:"text,omitempty"`
	Accept     *bool            `json:"accept,omitempty"`
}

// connection is one live client: its transport, stable player identity and,
// once joined, the bound room actor and its event outbox.
type connection struct {
	server   *Server
	bufrw    *bufio.ReadWriter
	playerID string

	actor  *room.Actor
	outbox chan room.Event

	writeMu sync.Mutex
}

func newConnection(server *Server, bufrw *bufio.ReadWriter, playerID string) *connection {
	return &connection{
		server:   server,
		bufrw:    bufrw,
		playerID: playerID,
	}
}

// teardown - reports the dropped transport to the room, which starts the
// grace/forfeit path if a game is in progress.
func (that *connection) teardown() {
	if that.actor != nil {
		that.actor.Disconnect(that.playerID)
	}
}

// pump - forwards room events to the client until the outbox closes. Send
// failures end the pump; the room prunes the session on the next disconnect.
func (that *connection) pump(outbox chan room.Event) {
	log := that.server.logger.With("method", "pump", "playerID", that.playerID)

	for event := range outbox {
		payload, err := json.Marshal(event)
		if err != nil {
			log.Error("failed to marshal event", "error", err)
			continue
		}

		if err = that.writeMessage(event.Action, payload); err != nil {
			log.Warn("failed to push event, stopping pump", "error", err)
			return
		}
	}
}

func (that *connection) sendEvent(event room.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	return that.writeMessage(event.Action, payload)
}

func (that *connection) sendError(action, errorMsg string) error {
	return that.sendEvent(room.Event{Action: action, Error: errorMsg})
}

func (that *connection) writeMessage(action string, payload json.RawMessage) error {
	responseBytes, err := json.Marshal(Message{Action: action, Payload: payload})
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}

	that.writeMu.Lock()
	defer that.writeMu.Unlock()

	f := frame{
		isFin:   true,
		opCode:  1, // text message
		length:  uint64(len(responseBytes)),
		payload: responseBytes,
	}

	if err = writeFrame(that.bufrw, f); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}

	return nil
}

func writeFrame(bufrw *bufio.ReadWriter, frameData frame) error {
	buf := make([]byte, 2)
	buf[0] |= frameData.opCode

	if frameData.isFin {
		buf[0] |= 0x80
	}

	switch {
	case frameData.length < 126:
		buf[1] |= byte(frameData.length)
	case frameData.length < 1<<16:
		buf[1] |= 126
		size := make([]byte, 2)
		binary.BigEndian.PutUint16(size, uint16(frameData.length))
		buf = append(buf, size...) //nolint: makezero // header is sized during encoding
	default:
		buf[1] |= 127
		size := make([]byte, 8)
		binary.BigEndian.PutUint64(size, frameData.length)
		buf = append(buf, size...) //nolint: makezero // header is sized during encoding
	}

	buf = append(buf, frameData.payload...) //nolint: makezero // header is sized during encoding

	if _, err := bufrw.Write(buf); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}

	if err := bufrw.Flush(); err != nil {
		return fmt.Errorf("failed to flush buffer: %w", err)
	}

	return nil
}

func (that *connection) readRequest() ([]byte, error) {
	header, err := readHeader(that.bufrw)
	if err != nil {
		return nil, err
	}

	payload, err := readPayload(that.bufrw, header)
	if err != nil {
		return nil, err
	}

	return payload, nil
}

func readHeader(bufrw *bufio.ReadWriter) ([]byte, error) {
	header := make([]byte, 2)
	if _, err := io.ReadFull(bufrw, header); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	return header, nil
}

func readPayload(bufrw *bufio.ReadWriter, header []byte) ([]byte, error) {
	finBit := header[0] >> 7
	opCode := header[0] & 0x0f
	maskBit := header[1] >> 7
	payloadLen := header[1] & 0x7f

	size, err := readPayloadLength(bufrw, payloadLen)
	if err != nil {
		return nil, err
	}

	mask, err := readMask(bufrw, maskBit)
	if err != nil {
		return nil, err
	}

	payload, err := readData(bufrw, size, mask)
	if err != nil {
		return nil, err
	}

	if opCode == 8 {
		return nil, io.EOF // close frame
	}

	if finBit == 1 {
		return payload, nil
	}

	return nil, nil
}

func readPayloadLength(bufrw *bufio.ReadWriter, payloadLen byte) (uint64, error) {
	if payloadLen < 126 {
		return uint64(payloadLen), nil
	}

	if payloadLen == 126 {
		length := make([]byte, 2)
		if _, err := io.ReadFull(bufrw, length); err != nil {
			return 0, fmt.Errorf("failed to read payload length: %w", err)
		}
		return uint64(binary.BigEndian.Uint16(length)), nil
	}

	length := make([]byte, 8)
	if _, err := io.ReadFull(bufrw, length); err != nil {
		return 0, fmt.Errorf("failed to read payload length: %w", err)
	}

	return binary.BigEndian.Uint64(length), nil
}

func readMask(bufrw *bufio.ReadWriter, maskBit byte) ([]byte, error) {
	if maskBit == 0 {
		return nil, nil
	}

	mask := make([]byte, 4)
	if _, err := io.ReadFull(bufrw, mask); err != nil {
		return nil, fmt.Errorf("failed to read mask: %w", err)
	}

	return mask, nil
}

func readData(bufrw *bufio.ReadWriter, size uint64, mask []byte) ([]byte, error) {
	payload := make([]byte, size)
	if _, err := io.ReadFull(bufrw, payload); err != nil {
		return nil, fmt.Errorf("failed to read payload: %w", err)
	}

	if mask != nil {
		for i := range payload {
			payload[i] ^= mask[i%4]
		}
	}

	return payload, nil
}
